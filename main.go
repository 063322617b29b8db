package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"strconv"
	"strings"

	draw9 "9fans.net/go/draw"
	"9fans.net/go/plan9"
	"9fans.net/go/plan9/client"
	"9fans.net/go/plumb"
	xdraw "golang.org/x/image/draw"
)

const (
	progName = "icanvas"

	darkgrey = draw9.Color(uint32(0x666666FF))
	charcoal = draw9.Color(uint32(0x333333FF))
	yellow   = draw9.Color(uint32(0xFFFF00FF))
	magenta  = draw9.Color(uint32(0xFF00FFFF))

	upArrowKey      = 61454
	downArrowKey    = 128
	leftArrowKey    = 61457
	rightArrowKey   = 61458
	scrollWheelUp   = 8
	scrollWheelDown = 16
	escKey          = 27

	// veilLevels is the number of veils for the distance falloff.
	veilLevels = 8
	// maxVeil is the opacity of the veil at distance factor 1.
	maxVeil = 0.65
)

var (
	windowSizeFlag = flag.String("w", "1300x1000", "set window size")
	catalogFile    = flag.String("c", "", "read the products from the TOML `file`")
	outputMarked   = flag.Bool("o", false, "output the paths of marked products")
	startSingle    = flag.Bool("s", false, "start with the detail view")
	silent         = flag.Bool("q", false, "silent mode, do not log anything")
	verbose        = flag.Bool("v", false, "verbose mode, log statistics for cache and focus")
	fast           = flag.Bool("f", false, "choose fast over best algorithms for scaling")
	debugCanvas    = flag.Bool("debug", false, "paint cells and distances over the canvas")
	setMemoryLimit = flag.Bool("m", false, "run with 1G soft memory limit. Overrides GOMEMLIMIT")
)

var (
	enableProfiler = flag.Bool("profile", false, "run with the profiler enabled")
	cpuprofile     = flag.String("cpuprofile", "cpu.prof", "write cpu profile to `file`")
	memprofile     = flag.String("memprofile", "mem.prof", "write memory profile to `file`")
)

var (
	windowSize image.Point

	plumber *client.Fid
)

type DisplayControl struct {
	display     *draw9.Display
	errch       chan error
	mctl        *draw9.Mousectl
	kctl        *draw9.Keyboardctl
	bgColor     *draw9.Image
	tileColor   *draw9.Image
	borderColor *draw9.Image
	fontColor   *draw9.Image
	debugColor  *draw9.Image
	veils       []*draw9.Image // masks of increasing opacity
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s [-f|-o|-q|-v|-s|-m|-debug] [-c catalog.toml] [file|dir]..

%s browses a product catalog on an infinite canvas.

Flags:
`, progName, progName)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if *enableProfiler {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	var ok bool
	windowSize, ok = stringToPoint(*windowSizeFlag)
	if !ok {
		log.Fatalf("cannot compute window size from %s", *windowSizeFlag)
	}

	if *setMemoryLimit {
		debug.SetMemoryLimit(1 * 1024 * 1024 * 1024) // or GOMEMLIMIT=1GiB
	}

	if *silent {
		log.SetOutput(io.Discard)
	}

	if *fast {
		fastScaler = xdraw.NearestNeighbor
		bestScaler = xdraw.BiLinear
	}

	var cfg *Config
	if *catalogFile != "" {
		var err error
		if cfg, err = LoadConfig(*catalogFile); err != nil {
			log.Fatal(err)
		}
	}
	items, err := loadCatalog(cfg, flag.Args())
	if errors.Is(err, errEmptyCatalog) {
		os.Exit(0)
	} else if err != nil {
		log.Fatal(err)
	}

	settings := DefaultSettings()
	var overlay Overlay
	if cfg != nil {
		settings = cfg.Canvas.Settings()
		*debugCanvas = *debugCanvas || cfg.Canvas.Debug
	}
	if *debugCanvas {
		overlay = debugOverlay{}
	}

	connectToPlumber()
	dctl := connectToDisplay(windowSize)
	dctl.cls()

	browser := NewBrowser(items)
	cv := NewCanvasView(browser, settings, overlay)
	cv.Connect(dctl)

	var views []View
	views = append(views, cv)
	if *startSingle {
		cv.Attach(dctl.display.Image.Bounds())
		if sv := cv.detail(); sv != nil {
			sv.Connect(dctl)
			views = append(views, sv)
		}
	}
	for len(views) > 0 {
		v := views[len(views)-1]
		v.Attach(dctl.display.Image.Bounds())
		if nv := v.Handle(); nv != nil {
			nv.Connect(dctl)
			views = append(views, nv)
		} else {
			views = views[0 : len(views)-1]
			if len(views) > 0 {
				syncViewsOnExit(v, views[len(views)-1])
			}
			v.Free()
		}
	}

	if *enableProfiler {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}

	if *outputMarked {
		for _, item := range browser.Marked() {
			if item.Src != "" {
				fmt.Println(item.Src)
			} else {
				fmt.Println(item.ID)
			}
		}
	}
}

// syncViewsOnExit moves the canvas to the product the detail view showed last.
func syncViewsOnExit(viewExited, viewToGo View) {
	if sv, ok1 := viewExited.(*SingleView); ok1 {
		if cv, ok2 := viewToGo.(*CanvasView); ok2 {
			cv.focus(sv.Item())
		}
	}
}

func connectToDisplay(dims image.Point) *DisplayControl {
	errch := make(chan error)
	disp, err := draw9.Init(errch, "", progName, fmt.Sprintf("%dx%d", dims.X, dims.Y))
	if err != nil {
		log.Fatalf("display: cannot connect: %v", err)
	}
	kctl := disp.InitKeyboard()
	mctl := disp.InitMouse()

	dctl := &DisplayControl{
		display:     disp,
		errch:       errch,
		mctl:        mctl,
		kctl:        kctl,
		bgColor:     disp.AllocImageMix(darkgrey, darkgrey),
		tileColor:   disp.AllocImageMix(charcoal, charcoal),
		borderColor: disp.AllocImageMix(darkgrey, yellow),
		fontColor:   disp.AllocImageMix(darkgrey, yellow),
		debugColor:  disp.AllocImageMix(magenta, magenta),
	}
	for i := 1; i <= veilLevels; i++ {
		g := uint32(float64(i) / veilLevels * maxVeil * 0xFF)
		veil, err := disp.AllocImage(image.Rect(0, 0, 1, 1), draw9.GREY8, true,
			draw9.Color(g<<24|g<<16|g<<8|0xFF))
		if err != nil {
			log.Fatalf("display: cannot allocate veil: %v", err)
		}
		dctl.veils = append(dctl.veils, veil)
	}
	return dctl
}

// veil returns the mask that fades a tile at distance factor d, or nil for
// tiles that are not faded.
func (dctl *DisplayControl) veil(d float64) *draw9.Image {
	if i := veilLevel(d, len(dctl.veils)); i > 0 {
		return dctl.veils[i-1]
	}
	return nil
}

// veilLevel quantizes d in [0, 1] to 0..levels.
func veilLevel(d float64, levels int) int {
	return int(clamp(d, 0, 1)*float64(levels) + 0.5)
}

// showWaitingAndCall changes the cursor to the waiting one and executes fn
func (dctl *DisplayControl) showWaitingAndCall(fn func()) {
	if err := dctl.display.SwitchCursor(lockarrow); err != nil {
		log.Printf("failed to switch cursor: %v", err)
	}
	fn()
	if err := dctl.display.SwitchCursor(nil); err != nil {
		log.Printf("failed to switch cursor: %v", err)
	}
}

func (dctl *DisplayControl) cls() {
	dctl.display.Image.Draw(dctl.display.Image.Bounds(), dctl.bgColor, nil, image.Point{})
	dctl.display.Flush()
}

func connectToPlumber() {
	var err error
	plumber, err = plumb.Open("send", plan9.OWRITE|plan9.OCEXEC)
	if err != nil {
		log.Printf("plumber not available: %v", err)
	}
}

func plumbImage(s string) {
	if plumber == nil {
		log.Printf("plumber not available")
		return
	}

	m := plumb.Message{
		Src:  progName,
		Dir:  filepath.Dir(s),
		Type: "text",
		Data: []byte(s),
	}
	if err := m.Send(plumber); err != nil {
		log.Printf("plumber: %v", err)
	}
}

func stringToPoint(s string) (image.Point, bool) {
	fields := strings.Split(s, "x")
	if len(fields) != 2 {
		return image.Point{}, false
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return image.Point{}, false
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return image.Point{}, false
	}
	return image.Pt(x, y), true
}
