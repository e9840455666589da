// Package views renders the server-side HTML pages as templ components.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/hiddengrid/internal/model"
)

// FlashMessage is a one-shot notice carried across a redirect
type FlashMessage struct {
	Type    string // success, error, info
	Message string
}

// PageData is common to every page
type PageData struct {
	Title  string
	Player *model.Player
	Flash  *FlashMessage
}

// Layout wraps body in the page chrome
func Layout(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		p.text(data.Title)
		p.raw(` | hiddengrid</title></head><body><nav><a href="/" class="brand">hiddengrid</a>`)
		if data.Player != nil {
			p.raw(`<span class="player">`)
			p.text(data.Player.DisplayName)
			p.raw(`</span><form method="post" action="/auth/logout"><button type="submit">Log out</button></form>`)
		}
		p.raw(`</nav>`)
		if data.Flash != nil {
			p.raw(`<div class="flash flash-`)
			p.text(data.Flash.Type)
			p.raw(`" role="status">`)
			p.text(data.Flash.Message)
			p.raw(`</div>`)
		}
		p.raw(`<main>`)
		p.component(ctx, body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// printer writes markup and stops at the first error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) component(ctx context.Context, c templ.Component) {
	if p.err == nil {
		p.err = c.Render(ctx, p.w)
	}
}
