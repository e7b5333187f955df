//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"screen-translate-overlay/src/tray"
)

const (
	wsExLayered     = 0x00080000
	wsExTransparent = 0x00000020
	wsExToolWindow  = 0x00000080
	wsExNoActivate  = 0x08000000

	ulwAlpha   = 0x00000002
	acSrcOver  = 0x00
	acSrcAlpha = 0x01
	frameTimer = 1
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procUpdateLayeredWindow = user32.NewProc("UpdateLayeredWindow")
)

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

// layeredHost is a per-pixel-alpha, click-through, topmost popup that never
// takes focus. Frames are pushed with UpdateLayeredWindow on a timer.
type layeredHost struct {
	opts Options
	hwnd win.HWND

	memDC  win.HDC
	bitmap win.HBITMAP
	bits   unsafe.Pointer
	size   image.Point
}

// hosts maps window handles to hosts for the window procedure.
var hosts = map[win.HWND]*layeredHost{}

func newHost(opts Options) Host { return &layeredHost{opts: opts} }

func (h *layeredHost) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	go tray.Run(h.opts.Title, h.opts.Tray)
	defer tray.Quit()

	className := syscall.StringToUTF16Ptr(fmt.Sprintf("TranslateOverlay_%d", time.Now().UnixNano()))
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(wndProc),
		HInstance:     win.GetModuleHandle(nil),
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		return fmt.Errorf("failed to register window class")
	}
	defer win.UnregisterClass(className)

	b := h.opts.Bounds
	h.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST|wsExLayered|wsExTransparent|wsExToolWindow|wsExNoActivate,
		className,
		syscall.StringToUTF16Ptr(h.opts.Title),
		win.WS_POPUP,
		int32(b.Min.X), int32(b.Min.Y), int32(b.Dx()), int32(b.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if h.hwnd == 0 {
		return fmt.Errorf("failed to create overlay window")
	}
	hosts[h.hwnd] = h
	defer delete(hosts, h.hwnd)
	defer h.releaseSurface()
	log.Printf("Overlay: window %v at (%d,%d) size %dx%d", h.hwnd, b.Min.X, b.Min.Y, b.Dx(), b.Dy())

	win.ShowWindow(h.hwnd, win.SW_SHOWNOACTIVATE)
	if win.SetTimer(h.hwnd, frameTimer, uint32(h.opts.FrameInterval/time.Millisecond), 0) == 0 {
		log.Printf("Overlay: failed to start frame timer")
	}

	go func() {
		<-ctx.Done()
		win.PostMessage(h.hwnd, win.WM_CLOSE, 0, 0)
	}()

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			return nil
		}
		if ret == -1 {
			return fmt.Errorf("GetMessage failed")
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	h := hosts[hwnd]
	switch msg {
	case win.WM_TIMER:
		if h != nil && wParam == frameTimer {
			h.present(h.opts.Frame(time.Now()))
		}
		return 0
	case win.WM_CLOSE:
		win.KillTimer(hwnd, frameTimer)
		win.DestroyWindow(hwnd)
		return 0
	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// present copies img into the window's DIB (RGBA to BGRA; both are
// premultiplied) and updates the layered window.
func (h *layeredHost) present(img *image.RGBA) {
	if img == nil {
		return
	}
	size := img.Bounds().Size()
	screenDC := win.GetDC(0)
	defer win.ReleaseDC(0, screenDC)
	if err := h.ensureSurface(screenDC, size); err != nil {
		log.Printf("Overlay: %v", err)
		return
	}

	dst := unsafe.Slice((*byte)(h.bits), size.X*size.Y*4)
	src := img.Pix
	for y := 0; y < size.Y; y++ {
		row := src[y*img.Stride : y*img.Stride+size.X*4]
		out := dst[y*size.X*4 : (y+1)*size.X*4]
		for x := 0; x < len(row); x += 4 {
			out[x] = row[x+2]
			out[x+1] = row[x+1]
			out[x+2] = row[x]
			out[x+3] = row[x+3]
		}
	}

	pos := win.POINT{X: int32(h.opts.Bounds.Min.X), Y: int32(h.opts.Bounds.Min.Y)}
	sz := win.SIZE{CX: int32(size.X), CY: int32(size.Y)}
	origin := win.POINT{}
	blend := blendFunction{BlendOp: acSrcOver, SourceConstantAlpha: 255, AlphaFormat: acSrcAlpha}
	procUpdateLayeredWindow.Call(
		uintptr(h.hwnd),
		uintptr(screenDC),
		uintptr(unsafe.Pointer(&pos)),
		uintptr(unsafe.Pointer(&sz)),
		uintptr(h.memDC),
		uintptr(unsafe.Pointer(&origin)),
		0,
		uintptr(unsafe.Pointer(&blend)),
		ulwAlpha,
	)
}

func (h *layeredHost) ensureSurface(screenDC win.HDC, size image.Point) error {
	if h.memDC != 0 && h.size == size {
		return nil
	}
	h.releaseSurface()

	h.memDC = win.CreateCompatibleDC(screenDC)
	bi := win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
		BiWidth:       int32(size.X),
		BiHeight:      -int32(size.Y), // top-down
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	h.bitmap = win.CreateDIBSection(h.memDC, &bi, win.DIB_RGB_COLORS, &h.bits, 0, 0)
	if h.bitmap == 0 {
		win.DeleteDC(h.memDC)
		h.memDC = 0
		return fmt.Errorf("failed to create %dx%d DIB section", size.X, size.Y)
	}
	win.SelectObject(h.memDC, win.HGDIOBJ(h.bitmap))
	h.size = size
	return nil
}

func (h *layeredHost) releaseSurface() {
	if h.bitmap != 0 {
		win.DeleteObject(win.HGDIOBJ(h.bitmap))
		h.bitmap = 0
	}
	if h.memDC != 0 {
		win.DeleteDC(h.memDC)
		h.memDC = 0
	}
	h.bits = nil
}
