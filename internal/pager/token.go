package pager

import "fmt"

// TokenStyle is the pagination convention of a backing endpoint
type TokenStyle int

const (
	// OffsetTokens count items already loaded, starting at 0
	OffsetTokens TokenStyle = iota
	// PageNumberTokens number pages starting at 1
	PageNumberTokens
)

func (s TokenStyle) String() string {
	switch s {
	case OffsetTokens:
		return "offset"
	case PageNumberTokens:
		return "page"
	default:
		return fmt.Sprintf("TokenStyle(%d)", int(s))
	}
}

// Initial returns the token for the first page
func (s TokenStyle) Initial() Token {
	if s == PageNumberTokens {
		return Token{Style: s, Value: 1}
	}
	return Token{Style: s, Value: 0}
}

// Token identifies the next batch to request
type Token struct {
	Style TokenStyle
	Value int
}

// Advance returns the token following a successful batch of received items.
// Offsets move by the batch size, page numbers by one.
func (t Token) Advance(received int) Token {
	if t.Style == PageNumberTokens {
		return Token{Style: t.Style, Value: t.Value + 1}
	}
	if received < 0 {
		received = 0
	}
	return Token{Style: t.Style, Value: t.Value + received}
}

// IsInitial reports whether t is the first-page token of its style
func (t Token) IsInitial() bool {
	return t == t.Style.Initial()
}

func (t Token) String() string {
	return fmt.Sprintf("%s=%d", t.Style, t.Value)
}
