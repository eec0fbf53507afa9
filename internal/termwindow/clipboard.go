package termwindow

import (
	"github.com/tbung/wezterm/internal/clipboard"
)

// CopyTo copies the active pane's selection to dest.
func (tw *TermWindow) CopyTo(dest clipboard.Destination) {
	tw.CompleteSelection(dest)
}

// PasteFrom reads src and sends its text to the active pane. The read
// completes asynchronously; the text reaches the pane on the window
// goroutine.
func (tw *TermWindow) PasteFrom(src clipboard.Source) {
	cell := tw.clipCell
	logger := tw.logger
	tw.clip.GetContents(src, func(text string, err error) {
		if err != nil {
			logger.Error("clipboard read failed", "err", err)
			return
		}
		cell.Store(text)
		if err := tw.post((*TermWindow).deliverPaste); err != nil {
			logger.Debug("paste dropped", "err", err)
		}
	})
}

func (tw *TermWindow) deliverPaste() {
	text, ok := tw.clipCell.Take()
	if !ok {
		return
	}
	pane, ok := tw.ActivePaneOrOverlay()
	if !ok {
		return
	}
	if tw.cfg.ScrollToBottomOnInput {
		tw.ScrollToBottom()
	}
	if err := pane.SendString(text); err != nil {
		tw.logger.Error("paste failed", "err", err)
	}
}

func (tw *TermWindow) copyText(dest clipboard.Destination, text string) {
	if err := tw.clip.SetContents(dest, text); err != nil {
		tw.logger.Error("clipboard write failed", "err", err)
	}
}
