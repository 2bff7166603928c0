// Package export renders closed days and commission summaries as .xlsx
// workbooks. It writes to any io.Writer and knows nothing about file names
// or downloads.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/commission"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SheetClose    = "Cierre"
	SheetMethods  = "Métodos"
	SheetExpenses = "Gastos"
	SheetSummary  = "Resumen"
	SheetDetail   = "Detalle"
)

var channelLabels = map[reconciliation.Channel]string{
	reconciliation.ChannelCash:    "Efectivo",
	reconciliation.ChannelCard:    "Tarjeta",
	reconciliation.ChannelDeposit: "Depósito",
}

var methodLabels = map[billing.PaymentMethod]string{
	billing.MethodCash:             "Efectivo",
	billing.MethodCard:             "Tarjeta",
	billing.MethodBankTransfer:     "Transferencia",
	billing.MethodInvoicedCash:     "Efectivo facturado",
	billing.MethodAccountStatement: "Estado de cuenta",
}

var expenseMethodLabels = map[expense.Method]string{
	expense.MethodCash:     "Efectivo",
	expense.MethodCard:     "Tarjeta",
	expense.MethodTransfer: "Transferencia",
}

// workbook keeps the first error so callers can chain writes and check once.
type workbook struct {
	f     *excelize.File
	money int
	bold  int
	err   error
}

func newWorkbook(first string) (*workbook, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", first); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("creating money style: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	return &workbook{f: f, money: money, bold: bold}, nil
}

func (w *workbook) sheet(name string) {
	if w.err != nil {
		return
	}

	_, w.err = w.f.NewSheet(name)
}

// row writes values starting at column A. decimal values become numbers
// with the money format.
func (w *workbook) row(sheet string, n int, values ...any) {
	if w.err != nil {
		return
	}

	cells := make([]any, len(values))

	var money []string

	for i, v := range values {
		d, ok := v.(decimal.Decimal)
		if !ok {
			cells[i] = v
			continue
		}

		cells[i] = d.InexactFloat64()

		cell, err := excelize.CoordinatesToCellName(i+1, n)
		if err != nil {
			w.err = err
			return
		}

		money = append(money, cell)
	}

	if w.err = w.f.SetSheetRow(sheet, fmt.Sprintf("A%d", n), &cells); w.err != nil {
		return
	}

	for _, cell := range money {
		if w.err = w.f.SetCellStyle(sheet, cell, cell, w.money); w.err != nil {
			return
		}
	}
}

func (w *workbook) header(sheet string, n int, labels ...any) {
	w.row(sheet, n, labels...)

	if w.err != nil {
		return
	}

	last, err := excelize.CoordinatesToCellName(len(labels), n)
	if err != nil {
		w.err = err
		return
	}

	w.err = w.f.SetCellStyle(sheet, fmt.Sprintf("A%d", n), last, w.bold)
}

func (w *workbook) widths(sheet string, widths ...float64) {
	for i, width := range widths {
		if w.err != nil {
			return
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = err
			return
		}

		w.err = w.f.SetColWidth(sheet, col, col, width)
	}
}

func (w *workbook) write(out io.Writer) error {
	defer w.f.Close()

	if w.err != nil {
		return fmt.Errorf("building workbook: %w", w.err)
	}

	if err := w.f.Write(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func verdict(balanced bool) string {
	if balanced {
		return "Cuadra"
	}

	return "Descuadre"
}

// WriteReconciliation renders a day's close: channel totals on the first
// sheet, revenue per payment method on the second, expenses on the third.
func WriteReconciliation(out io.Writer, r reconciliation.Report) error {
	w, err := newWorkbook(SheetClose)
	if err != nil {
		return err
	}

	res := r.Result

	w.row(SheetClose, 1, "Cierre de caja", res.Date.Format(time.DateOnly))
	w.header(SheetClose, 3, "Canal", "Esperado", "Contado", "Diferencia")

	for i, c := range reconciliation.Channels {
		w.row(SheetClose, 4+i, channelLabels[c], res.Expected.Get(c), res.Counted.Get(c), res.Difference.Get(c))
	}

	w.row(SheetClose, 8, "Resultado", verdict(res.IsBalanced))
	w.row(SheetClose, 9, "Tolerancia", res.Tolerance)
	w.row(SheetClose, 10, "Ingresos totales", res.TotalRevenue)
	w.row(SheetClose, 11, "Gastos totales", res.TotalExpenses)
	w.row(SheetClose, 12, "Gastos en efectivo", r.CashExpenses)
	w.widths(SheetClose, 22, 14, 14, 14)

	w.sheet(SheetMethods)
	w.header(SheetMethods, 1, "Método", "Pacientes", "Total")

	var (
		patients int
		total    decimal.Decimal
	)

	for i, mt := range r.ByPaymentMethod {
		w.row(SheetMethods, 2+i, methodLabels[mt.Method], mt.Count, mt.Total)
		patients += mt.Count
		total = total.Add(mt.Total)
	}

	w.row(SheetMethods, 2+len(r.ByPaymentMethod), "Total", patients, total)
	w.widths(SheetMethods, 22, 12, 14)

	w.sheet(SheetExpenses)
	w.header(SheetExpenses, 1, "Hora", "Concepto", "Método", "Monto")

	var spent decimal.Decimal

	for i, e := range r.Expenses {
		w.row(SheetExpenses, 2+i, e.CreatedAt.Format("15:04"), e.Concept, expenseMethodLabels[e.Method], e.Amount)
		spent = spent.Add(e.Amount)
	}

	w.row(SheetExpenses, 2+len(r.Expenses), "", "Total", "", spent)
	w.widths(SheetExpenses, 8, 32, 14, 14)

	return w.write(out)
}

// WriteCommissions renders a per-doctor summary and a per-study detail for
// the inclusive range from..to.
func WriteCommissions(out io.Writer, from, to time.Time, totals []commission.DoctorTotal) error {
	w, err := newWorkbook(SheetSummary)
	if err != nil {
		return err
	}

	w.row(SheetSummary, 1, "Comisiones", from.Format(time.DateOnly), to.Format(time.DateOnly))
	w.header(SheetSummary, 3, "Médico", "Pacientes", "Base", "Comisión")

	var (
		patients   int
		base, comm decimal.Decimal
	)

	for i, dt := range totals {
		w.row(SheetSummary, 4+i, dt.DoctorName, dt.Patients, dt.Base, dt.Commission)
		patients += dt.Patients
		base = base.Add(dt.Base)
		comm = comm.Add(dt.Commission)
	}

	w.row(SheetSummary, 4+len(totals), "Total", patients, base, comm)
	w.widths(SheetSummary, 28, 12, 14, 14)

	w.sheet(SheetDetail)
	w.header(SheetDetail, 1, "Médico", "Estudio", "Pacientes", "Base", "Comisión")

	n := 2

	for _, dt := range totals {
		for _, st := range dt.Studies {
			w.row(SheetDetail, n, dt.DoctorName, st.Study, st.Patients, st.Base, st.Commission)
			n++
		}
	}

	w.widths(SheetDetail, 28, 28, 12, 14, 14)

	return w.write(out)
}

// MethodLabel is the display name of a payment method.
func MethodLabel(m billing.PaymentMethod) string {
	if l, ok := methodLabels[m]; ok {
		return l
	}

	return string(m)
}

func ExpenseMethodLabel(m expense.Method) string {
	if l, ok := expenseMethodLabels[m]; ok {
		return l
	}

	return string(m)
}
