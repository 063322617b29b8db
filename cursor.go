package main

import (
	"image"

	draw9 "9fans.net/go/draw"
)

// lockarrow is shown while the window waits for image loads.
var lockarrow = &draw9.Cursor{
	Point: image.Point{0, 0},
	White: [32]uint8{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	Black: [32]uint8{
		0x00, 0x00, 0x7f, 0xc0, 0x7f, 0x00, 0x7c, 0x00,
		0x7e, 0x00, 0x7f, 0x00, 0x6f, 0x80, 0x67, 0xc0,
		0x43, 0xe0, 0x41, 0xf0, 0x00, 0xf8, 0x00, 0x7c,
		0x00, 0x3e, 0x00, 0x1f, 0x00, 0x0e, 0x00, 0x04,
	},
}
