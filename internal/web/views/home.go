package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/hiddengrid/internal/model"
)

// PositionView shows a player's encrypted coordinates
type PositionView struct {
	X     string
	Y     string
	Moves int
}

// Revealed is a position decrypted for its owner
type Revealed struct {
	X uint8
	Y uint8
}

// HomeData drives the single game page
type HomeData struct {
	PageData
	Next     string
	Position *PositionView // nil until the player joins
	Revealed *Revealed
	Min      uint8
	Max      uint8
	Players  int
}

var directions = []model.Direction{
	model.DirectionUp,
	model.DirectionLeft,
	model.DirectionRight,
	model.DirectionDown,
}

// Home renders the landing page, or the board once signed in
func Home(data HomeData) templ.Component {
	return Layout(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		switch {
		case data.Player == nil:
			guestForm(p, data.Next)
		case data.Position == nil:
			p.raw(`<section id="join"><h1>Not on the board</h1>`)
			p.raw(`<p>Joining drops you on a random square nobody else can see.</p>`)
			p.raw(`<form method="post" action="/grid/join"><button type="submit">Join</button></form></section>`)
		default:
			position(p, data)
		}
		p.raw(`<footer><p id="stats">`)
		p.text(strconv.Itoa(data.Players))
		p.raw(` players on a `)
		p.text(strconv.Itoa(int(data.Min)) + "-" + strconv.Itoa(int(data.Max)))
		p.raw(` board</p></footer>`)
		return p.err
	}))
}

func guestForm(p *printer, next string) {
	p.raw(`<section id="guest"><h1>Hidden grid</h1>`)
	p.raw(`<p>Move around a 10 by 10 board. Only you can decrypt where you are.</p>`)
	p.raw(`<form method="post" action="/auth/guest">`)
	if next != "" {
		p.raw(`<input type="hidden" name="next" value="`)
		p.text(next)
		p.raw(`">`)
	}
	p.raw(`<label for="display_name">Display name</label>`)
	p.raw(`<input id="display_name" name="display_name" maxlength="32" required>`)
	p.raw(`<button type="submit">Play as guest</button></form></section>`)
}

func position(p *printer, data HomeData) {
	p.raw(`<section id="position"><h1>Your position</h1><dl>`)
	p.raw(`<dt>x</dt><dd class="handle" id="handle-x">`)
	p.text(data.Position.X)
	p.raw(`</dd><dt>y</dt><dd class="handle" id="handle-y">`)
	p.text(data.Position.Y)
	p.raw(`</dd><dt>moves</dt><dd id="moves">`)
	p.text(strconv.Itoa(data.Position.Moves))
	p.raw(`</dd></dl>`)

	p.raw(`<form id="move" method="post" action="/grid/move">`)
	for _, d := range directions {
		p.raw(`<button type="submit" name="direction" value="`)
		p.text(d.String())
		p.raw(`">`)
		p.text(d.String())
		p.raw(`</button>`)
	}
	p.raw(`</form><form id="reveal" method="post" action="/grid/reveal">`)
	p.raw(`<button type="submit">Reveal</button></form></section>`)

	if data.Revealed != nil {
		board(p, data)
	}
}

// board draws the grid with the top row at Max
func board(p *printer, data HomeData) {
	r := data.Revealed
	p.raw(`<section id="revealed"><p>You are at (<span id="x">`)
	p.text(strconv.Itoa(int(r.X)))
	p.raw(`</span>, <span id="y">`)
	p.text(strconv.Itoa(int(r.Y)))
	p.raw(`</span>)</p><table class="board">`)
	for y := int(data.Max); y >= int(data.Min); y-- {
		p.raw(`<tr>`)
		for x := int(data.Min); x <= int(data.Max); x++ {
			if x == int(r.X) && y == int(r.Y) {
				p.raw(`<td class="cell here">@</td>`)
			} else {
				p.raw(`<td class="cell"></td>`)
			}
		}
		p.raw(`</tr>`)
	}
	p.raw(`</table></section>`)
}
