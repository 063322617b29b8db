package main

import (
	"log"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/fogleman/ease"
)

// Easing maps the progress of a tween in [0, 1] to the fraction of the way
// from the start to the end value. It may overshoot.
type Easing func(t float64) float64

// Tween configures one animation. It always ends after Duration.
type Tween struct {
	Duration time.Duration
	Ease     Easing
}

// Handle cancels an animation in flight. A cancelled animation does not
// complete.
type Handle interface {
	Cancel()
}

// Animator animates a value from one number to another. Any tween or physics
// engine that guarantees termination can stand behind it.
type Animator interface {
	Animate(from, to float64, cfg Tween, onUpdate func(float64), onComplete func()) Handle
}

// Easings without overshoot.
var (
	Linear   Easing = ease.Linear
	OutQuad  Easing = ease.OutQuad
	OutCubic Easing = ease.OutCubic
)

// OutElastic overshoots and oscillates around the end value, the oscillation
// decaying exponentially. period is a fraction of the tween.
func OutElastic(period float64) Easing {
	f := ease.OutElasticFunction(period)
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return f(t)
	}
}

// Spring is the step response of a damped spring with unit mass, sampled over
// d. The tween snaps to the end value when d runs out.
func Spring(stiffness, damping float64, d time.Duration) Easing {
	w0 := math.Sqrt(stiffness)
	zeta := damping / (2 * w0)
	secs := d.Seconds()
	return func(t float64) float64 {
		pos, _ := harmonica.NewSpring(t*secs, w0, zeta).Update(0, 0, 1)
		return pos
	}
}

// Tweener is a frame driven Animator. The host calls Tick once per frame; all
// tweens advance against the same instant.
type Tweener struct {
	now    func() time.Time
	tweens []*tween
}

type tween struct {
	from, to   float64
	cfg        Tween
	start      time.Time
	onUpdate   func(float64)
	onComplete func()
	cancelled  bool
}

func (tw *tween) Cancel() {
	tw.cancelled = true
}

// NewTweener returns a Tweener reading the time from now. Tweens start at the
// instant they are created.
func NewTweener(now func() time.Time) *Tweener {
	if now == nil {
		now = time.Now
	}
	return &Tweener{now: now}
}

// Animate schedules a tween. Callbacks never run before the next Tick.
func (tk *Tweener) Animate(from, to float64, cfg Tween, onUpdate func(float64), onComplete func()) Handle {
	if cfg.Ease == nil {
		cfg.Ease = Linear
	}
	if onUpdate == nil {
		onUpdate = func(float64) {}
	}
	tw := &tween{
		from:       from,
		to:         to,
		cfg:        cfg,
		start:      tk.now(),
		onUpdate:   onUpdate,
		onComplete: onComplete,
	}
	tk.tweens = append(tk.tweens, tw)
	return tw
}

// Active reports whether a tween is in flight.
func (tk *Tweener) Active() bool {
	for _, tw := range tk.tweens {
		if !tw.cancelled {
			return true
		}
	}
	return false
}

// Tick advances every tween to now. Tweens that reach their end get the exact
// end value and complete after all updates of this frame ran, so completion
// callbacks may start new tweens safely. A panic in an easing function or a
// callback is logged and ends that tween.
func (tk *Tweener) Tick(now time.Time) {
	running := tk.tweens
	tk.tweens = nil

	var keep, finished []*tween
	for _, tw := range running {
		if tw.cancelled {
			continue
		}
		t := 1.0
		if tw.cfg.Duration > 0 {
			t = math.Min(1, float64(now.Sub(tw.start))/float64(tw.cfg.Duration))
		}
		if t >= 1 {
			finished = append(finished, tw)
			continue
		}
		ok := safely("update", func() {
			v := tw.from + (tw.to-tw.from)*tw.cfg.Ease(math.Max(0, t))
			tw.onUpdate(v)
		})
		if !ok {
			finished = append(finished, tw)
			continue
		}
		keep = append(keep, tw)
	}
	// tweens created by the callbacks above
	tk.tweens = append(keep, tk.tweens...)

	for _, tw := range finished {
		if tw.cancelled {
			continue
		}
		tw.cancelled = true
		safely("update", func() { tw.onUpdate(tw.to) })
		if tw.onComplete != nil {
			safely("complete", tw.onComplete)
		}
	}
}

// safely runs fn and reports whether it returned normally.
func safely(what string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tween: %s: %v", what, r)
			ok = false
		}
	}()
	fn()
	return true
}
