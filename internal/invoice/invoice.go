// Package invoice lays out and renders the printable document for an order.
package invoice

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/money"
)

const dateLayout = "02/01/2006"

// Document is the fixed layout of an order invoice, independent of the output format.
type Document struct {
	Title    string
	Date     string
	Status   string
	Customer []string
	Lines    []string
	Total    string
	Footer   string
}

// Build lays out an invoice from the order as it was recorded at checkout.
// Line prices come from the order snapshot, never from the live catalog.
func Build(o *model.Order, purchaserEmail string) Document {
	email := purchaserEmail
	if email == "" {
		email = "N/A"
	}

	lines := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		name := l.Name
		if l.CustomizationName != "" {
			name = fmt.Sprintf("%s (%s)", name, l.CustomizationName)
		}
		lines = append(lines, fmt.Sprintf("%s x%d - %s", name, l.Quantity, euros(l.Subtotal())))
	}

	return Document{
		Title:  fmt.Sprintf("FACTURE - COMMANDE #%d", o.ID),
		Date:   "Date: " + o.CreatedAt.Format(dateLayout),
		Status: "Statut: " + string(o.Status),
		Customer: []string{
			fmt.Sprintf("Nom: %s %s", o.FirstName, o.LastName),
			"Email: " + email,
			"Adresse: " + o.Address,
			fmt.Sprintf("Ville: %s %s", o.City, o.PostalCode),
			"Pays: " + o.Country,
		},
		Lines:  lines,
		Total:  "TOTAL: " + euros(o.TotalPrice),
		Footer: "Merci pour votre commande !",
	}
}

func euros(c money.Cents) string {
	return c.String() + "€"
}

// Filename is the attachment name offered for the rendered document.
func Filename(orderID int64) string {
	return fmt.Sprintf("commande-%d.pdf", orderID)
}

// Text renders the document as plain text, one block per line.
func (d Document) Text() string {
	var b strings.Builder
	for _, s := range []string{d.Title, d.Date, d.Status, "", "INFORMATIONS CLIENT"} {
		b.WriteString(s + "\n")
	}
	for _, s := range d.Customer {
		b.WriteString(s + "\n")
	}
	b.WriteString("\nARTICLES COMMANDÉS\n")
	for _, s := range d.Lines {
		b.WriteString(s + "\n")
	}
	b.WriteString("\n" + d.Total + "\n\n" + d.Footer + "\n")
	return b.String()
}

// RenderPDF writes the document as a single A4 page.
func RenderPDF(w io.Writer, d Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	text := func(size float64, style, s string, gap float64) {
		pdf.SetFont("Helvetica", style, size)
		pdf.CellFormat(0, size*0.5, tr(s), "", 1, "L", false, 0, "")
		pdf.Ln(gap)
	}

	text(20, "B", d.Title, 6)
	text(12, "", d.Date, 1)
	text(12, "", d.Status, 8)

	text(16, "B", "INFORMATIONS CLIENT", 3)
	for _, s := range d.Customer {
		text(10, "", s, 1)
	}
	pdf.Ln(6)

	text(16, "B", "ARTICLES COMMANDÉS", 3)
	for _, s := range d.Lines {
		text(10, "", s, 2)
	}
	pdf.Ln(6)

	text(14, "B", d.Total, 12)
	text(10, "I", d.Footer, 0)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}
	return nil
}
