// Package receipt renders fixed-layout PDF payment receipts mirroring the
// dashboard's printable format: wedding header, hotel block, guest block,
// payment details and a boxed financial summary.
package receipt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/bodasuite/boda-suite/internal/repository"
)

// Receipt is the file metadata returned to the client after rendering.
type Receipt struct {
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath"`
	RelativePath string `json:"relativePath"`
}

// ErrInvalidFileName is returned for download names that try to escape the
// receipts directory.
var ErrInvalidFileName = errors.New("invalid receipt file name")

// Renderer writes receipt PDFs into a fixed output directory.
type Renderer struct {
	dir string
}

// NewRenderer ensures the output directory exists.
func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &Renderer{dir: dir}, nil
}

// Path resolves a stored receipt file name to its absolute path, rejecting
// anything that is not a plain file name.
func (r *Renderer) Path(fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", ErrInvalidFileName
	}
	return filepath.Join(r.dir, fileName), nil
}

const (
	goldR, goldG, goldB = 0xD4, 0xAF, 0x37 // dorado
	textR, textG, textB = 0x2D, 0x37, 0x48
)

// Render writes one receipt PDF and returns its file metadata. The wedding
// configuration and hotel may be nil when they were never saved; their
// sections are simply left blank rather than failing the payment flow.
func (r *Renderer) Render(pago *repository.Payment, invitado *repository.GuestWithBalance,
	cfg *repository.WeddingConfig, hotel *repository.Hotel) (Receipt, error) {

	safeName := strings.ReplaceAll(strings.TrimSpace(invitado.Nombre), " ", "_")
	fileName := fmt.Sprintf("recibo_%s_%s.pdf", safeName, uuid.NewString())
	filePath := filepath.Join(r.dir, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252; translate accented text
	pdf.AddPage()

	// Encabezado
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(goldR, goldG, goldB)
	pdf.CellFormat(0, 12, "RECIBO DE PAGO", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(textR, textG, textB)
	pdf.CellFormat(0, 10, "Boda Suite", "", 1, "C", false, 0, "")

	pdf.SetDrawColor(goldR, goldG, goldB)
	pdf.SetLineWidth(0.8)
	pdf.Line(15, pdf.GetY()+2, 195, pdf.GetY()+2)
	pdf.Ln(8)

	if cfg != nil {
		sectionTitle(pdf, tr("INFORMACIÓN DE LA BODA"))
		line(pdf, tr(fmt.Sprintf("Novios: %s & %s", cfg.NombreNovio, cfg.NombreNovia)))
		line(pdf, tr("Fecha: "+cfg.FechaBoda))
		line(pdf, tr("Hora: "+cfg.HoraBoda))
		line(pdf, tr("Lugar: "+cfg.LugarBoda))
		pdf.Ln(4)
	}

	if hotel != nil {
		sectionTitle(pdf, tr("INFORMACIÓN DEL HOTEL"))
		line(pdf, tr("Hotel: "+hotel.Nombre))
		line(pdf, tr("Dirección: "+hotel.Direccion))
		if len(hotel.ServiciosIncluidos) > 0 {
			line(pdf, tr("Servicios: "+strings.Join(hotel.ServiciosIncluidos, ", ")))
		}
		pdf.Ln(4)
	}

	sectionTitle(pdf, tr("INFORMACIÓN DEL INVITADO"))
	line(pdf, tr("Nombre: "+invitado.Nombre))
	line(pdf, tr("Contacto: "+invitado.Contacto))
	if invitado.HabitacionNombre != nil {
		line(pdf, tr("Habitación: "+*invitado.HabitacionNombre))
	}
	pdf.Ln(4)

	sectionTitle(pdf, tr("DETALLES DEL PAGO"))
	line(pdf, tr("Fecha de Pago: "+pago.FechaPago))
	line(pdf, tr("Método de Pago: "+pago.MetodoPago))
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(goldR, goldG, goldB)
	line(pdf, tr(fmt.Sprintf("Monto Pagado: $%.2f", pago.Monto)))
	pdf.SetTextColor(textR, textG, textB)
	line(pdf, tr(fmt.Sprintf("Saldo Pendiente: $%.2f", invitado.SaldoPendiente)))
	pdf.Ln(6)

	// Cuadro de resumen
	top := pdf.GetY()
	pdf.SetLineWidth(0.4)
	pdf.Rect(15, top, 180, 32, "D")
	pdf.SetXY(20, top+3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(goldR, goldG, goldB)
	pdf.CellFormat(0, 6, "RESUMEN FINANCIERO", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(textR, textG, textB)
	pdf.SetX(20)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total a Pagar: $%.2f", invitado.HabitacionPrecio), "", 1, "L", false, 0, "")
	pdf.SetX(20)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total Pagado: $%.2f", invitado.TotalPagado), "", 1, "L", false, 0, "")
	pdf.SetX(20)
	pdf.CellFormat(0, 6, fmt.Sprintf("Saldo Pendiente: $%.2f", invitado.SaldoPendiente), "", 1, "L", false, 0, "")

	// Pie de página
	pdf.SetY(top + 40)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0x66, 0x66, 0x66)
	pdf.CellFormat(0, 5, "Recibo generado el "+time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Este documento es un comprobante oficial de pago", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return Receipt{}, fmt.Errorf("write receipt: %w", err)
	}
	return Receipt{
		FileName:     fileName,
		FilePath:     filePath,
		RelativePath: "/recibos/" + fileName,
	}, nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(goldR, goldG, goldB)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(textR, textG, textB)
}

func line(pdf *fpdf.Fpdf, s string) {
	pdf.CellFormat(0, 6, s, "", 1, "L", false, 0, "")
}
