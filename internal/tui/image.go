package tui

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/levelshelf/internal/icons"
)

// TerminalImageProtocol represents the image protocol supported by the terminal
type TerminalImageProtocol int

// Terminal image protocol types
const (
	// ProtocolNone indicates no image protocol support
	ProtocolNone TerminalImageProtocol = iota
	// ProtocolKitty indicates Kitty terminal graphics protocol
	ProtocolKitty
	// ProtocolITerm2 indicates iTerm2 inline images protocol
	ProtocolITerm2
)

// DetectImageProtocol detects which terminal image protocol is supported.
func DetectImageProtocol() TerminalImageProtocol {
	termProgram := os.Getenv("TERM_PROGRAM")
	term := os.Getenv("TERM")

	if strings.Contains(term, "kitty") {
		return ProtocolKitty
	}

	// Ghostty speaks the Kitty protocol
	if termProgram == "ghostty" {
		return ProtocolKitty
	}

	if termProgram == "iTerm.app" {
		return ProtocolITerm2
	}

	return ProtocolNone
}

// RenderIcon renders a cached level icon inline. Placeholders and terminals
// without image support render as the empty string.
func RenderIcon(icon icons.Icon, protocol TerminalImageProtocol) string {
	if icon.IsPlaceholder() || len(icon.PNG) == 0 {
		return ""
	}
	return RenderInlineImageBytes(icon.PNG, protocol)
}

// RenderInlineImageBytes renders image data inline using the terminal's protocol.
// Returns the terminal escape sequences to display the image, or empty string on error.
func RenderInlineImageBytes(data []byte, protocol TerminalImageProtocol) string {
	switch protocol {
	case ProtocolKitty:
		return renderKittyImage(data)
	case ProtocolITerm2:
		return renderITerm2Image(data)
	}
	return ""
}

// kittyChunk is the largest base64 payload Kitty accepts per escape.
const kittyChunk = 4096

// renderKittyImage uses Kitty's graphics protocol, transmitting PNG data
// directly (f=100, t=d) in chunks flagged with m=1 until the last.
func renderKittyImage(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	for first := true; ; first = false {
		chunk := encoded
		if len(chunk) > kittyChunk {
			chunk = chunk[:kittyChunk]
		}
		encoded = encoded[len(chunk):]
		more := 0
		if encoded != "" {
			more = 1
		}
		if first {
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,t=d,m=%d;%s\x1b\\", more, chunk)
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, chunk)
		}
		if more == 0 {
			return b.String()
		}
	}
}

// renderITerm2Image uses iTerm2's inline images protocol
// Format: \x1b]1337;File=inline=1:<base64>\x07
func renderITerm2Image(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("\x1b]1337;File=inline=1;width=12;preserveAspectRatio=1:%s\x07", encoded)
}
