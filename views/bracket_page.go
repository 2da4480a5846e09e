package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/a-h/templ"
)

// BracketPage renders a read only view of a draw, one column per round.
func BracketPage(data BracketData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		draw := data.Draw

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		fmt.Fprintf(&b, `<title>Draw %s</title>`, templ.EscapeString(draw.ID.String()))
		b.WriteString(`</head><body>`)

		if actor := GetActor(ctx); actor != nil {
			fmt.Fprintf(&b, `<header class="actor">%s (%s)</header>`,
				templ.EscapeString(actor.ID), templ.EscapeString(string(actor.Role)))
		}

		fmt.Fprintf(&b, `<main class="draw" data-status="%s"><h1>%s</h1>`,
			templ.EscapeString(string(draw.Status)), templ.EscapeString(drawTitle(draw)))

		for _, section := range data.Sections {
			fmt.Fprintf(&b, `<section class="bracket"><h2>%s</h2><div class="rounds">`, templ.EscapeString(section.Title))
			for _, round := range section.Rounds {
				fmt.Fprintf(&b, `<div class="round" data-round="%d"><h3>%s</h3>`, round.Round, templ.EscapeString(round.Label))
				for i := range round.Matches {
					writeMatch(&b, &round.Matches[i])
				}
				b.WriteString(`</div>`)
			}
			b.WriteString(`</div></section>`)
		}

		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeMatch(b *strings.Builder, m *bracket.Match) {
	fmt.Fprintf(b, `<div class="match" id="match-%s" data-status="%s">`,
		templ.EscapeString(m.ID.String()), templ.EscapeString(string(m.Status)))
	writeSlot(b, m, 1, m.Participant1, m.Score1)
	writeSlot(b, m, 2, m.Participant2, m.Score2)
	if m.Venue != nil {
		fmt.Fprintf(b, `<span class="venue">%s</span>`, templ.EscapeString(*m.Venue))
	}
	b.WriteString(`</div>`)
}

func writeSlot(b *strings.Builder, m *bracket.Match, slot int, ref *bracket.ParticipantRef, score *string) {
	class := "slot"
	switch {
	case m.IsWinner(slot):
		class += " winner"
	case m.IsLoser(slot):
		class += " loser"
	}
	fmt.Fprintf(b, `<div class="%s"><span class="name">%s</span>`, class, templ.EscapeString(participantName(ref)))
	if score != nil {
		fmt.Fprintf(b, `<span class="score">%s</span>`, templ.EscapeString(*score))
	}
	b.WriteString(`</div>`)
}

func drawTitle(draw *bracket.Draw) string {
	name := strings.ReplaceAll(string(draw.DrawType), "_", " ")
	if name == "" {
		return "Draw"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
