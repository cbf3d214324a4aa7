package board

import (
	"io"
	"iter"

	"github.com/jung-kurt/gofpdf"

	"github.com/Tk21111/journal_board/config"
)

// ExportPDF writes the strokes as vector lines on a single page sized to
// the logical board, one point per logical pixel. Eraser strokes are drawn
// in white since PDF has no destination-out.
func ExportPDF(w io.Writer, width, height float64, strokes iter.Seq[*Stroke]) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	for st := range strokes {
		if st.Len() < 2 {
			continue
		}
		if st.Mode == config.ModeEraser {
			pdf.SetDrawColor(255, 255, 255)
		} else {
			c := ParseColor(st.Color)
			pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		}
		pdf.SetLineWidth(st.Size)

		for a, b := range st.Segments() {
			pdf.Line(a.X(), a.Y(), b.X(), b.Y())
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
