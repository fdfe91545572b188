package receipt

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// RenderPDF lays out the same lines as the PNG receipt on an A4 page.
func RenderPDF(r Receipt) ([]byte, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	lines := r.Lines()
	m.AddRow(15,
		text.NewCol(12, lines[0], props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	for _, line := range lines[1:] {
		m.AddRow(8,
			text.NewCol(12, line, props.Text{Size: 10, Align: align.Left}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("receipt pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
