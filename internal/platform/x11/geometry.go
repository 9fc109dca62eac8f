package x11

import "github.com/mj1618/window-tiler/internal/model"

// clientSize converts a target frame size into the client size to request.
// Window managers apply _NET_MOVERESIZE_WINDOW sizes to the client area and
// add their decorations around it, while bounds are measured on the frame.
// The decoration extent is taken from the current frame and client
// geometry.
func clientSize(target model.Size, frame, client model.Bounds) model.Size {
	w := target.Width - (frame.Width - client.Width)
	h := target.Height - (frame.Height - client.Height)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return model.Size{Width: w, Height: h}
}
