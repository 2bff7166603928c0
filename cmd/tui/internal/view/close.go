package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/frontdesk/internal/export"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
)

type closeState int

const (
	closeStateLoading closeState = iota
	closeStateCounted
	closeStateWorking
	closeStatePreview
	closeStatePath
)

const exportTimeout = time.Minute

var channelNames = map[reconciliation.Channel]string{
	reconciliation.ChannelCash:    "Efectivo",
	reconciliation.ChannelCard:    "Tarjeta",
	reconciliation.ChannelDeposit: "Depósito",
}

// CloseModel walks the operator through the cash-up: show what the till
// should hold, take the counted amounts, preview, then close and export.
type CloseModel struct {
	CommonModel
	svc *reconciliation.Service

	state    closeState
	date     time.Time
	expected reconciliation.Expected
	counted  reconciliation.CountedInput
	result   *reconciliation.Result
	closed   bool

	form    *huh.Form
	spinner spinner.Model
	path    string

	status string
	err    error
}

func NewCloseModel(session Session, svc *reconciliation.Service) CloseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return CloseModel{
		CommonModel: CommonModel{Session: session},
		svc:         svc,
		state:       closeStateLoading,
		date:        session.Today(),
		spinner:     s,
		path:        "./cierres",
	}
}

func (m CloseModel) Title() string { return "Cierre de caja" }

func (m CloseModel) ShortHelp() string {
	switch m.state {
	case closeStatePreview:
		if m.closed {
			return "x: exportar | Esc: menú"
		}

		return "c: cerrar el día | e: corregir conteo | x: exportar | Esc: menú"
	case closeStateWorking:
		return "Procesando..."
	}

	return "Esc: regresar"
}

func (m CloseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadExpectedCmd())
}

func (m CloseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case expectedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = closeStatePreview

			return m, nil
		}

		m.expected = msg.expected
		m.form = m.buildCountedForm()
		m.state = closeStateCounted

		return m, m.form.Init()

	case closeResultMsg:
		m.state = closeStatePreview
		m.err = msg.err
		m.status = msg.text

		if msg.err == nil && msg.result != nil {
			m.result = msg.result
		}

		if msg.closed {
			m.closed = true
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case closeStateCounted, closeStatePath:
		return m.updateForm(msg)
	case closeStatePreview:
		return m.updatePreview(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m CloseModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		if m.state == closeStatePath {
			m.state = closeStatePreview
			return m, nil
		}

		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == closeStatePath {
		m.path = m.form.GetString("path")
		m.state = closeStateWorking

		return m, tea.Batch(m.spinner.Tick, m.exportCmd())
	}

	m.counted = reconciliation.CountedInput{
		Cash:    m.form.GetString("cash"),
		Card:    m.form.GetString("card"),
		Deposit: m.form.GetString("deposit"),
	}
	m.state = closeStateWorking

	return m, tea.Batch(m.spinner.Tick, m.previewCmd())
}

func (m CloseModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "e":
		if m.closed {
			return m, nil
		}

		m.form = m.buildCountedForm()
		m.state = closeStateCounted

		return m, m.form.Init()
	case "c":
		if m.closed || m.result == nil {
			return m, nil
		}

		m.state = closeStateWorking

		return m, tea.Batch(m.spinner.Tick, m.closeCmd())
	case "x":
		if m.result == nil {
			return m, nil
		}

		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Key("path").
					Title("Carpeta de destino").
					Description("Se crea si no existe").
					Placeholder("./cierres").
					Value(&m.path),
			),
		).WithWidth(50).WithShowHelp(false)
		m.state = closeStatePath

		return m, m.form.Init()
	}

	return m, nil
}

func (m CloseModel) buildCountedForm() *huh.Form {
	amount := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("requerido")
		}

		_, err := parseAmount("monto", s)

		return err
	}

	input := func(key, title, value string) *huh.Input {
		v := value
		return huh.NewInput().Key(key).Title(title).Value(&v).Validate(amount)
	}

	return huh.NewForm(
		huh.NewGroup(
			input("cash", "Efectivo contado", m.counted.Cash),
			input("card", "Vouchers de tarjeta", m.counted.Card),
			input("deposit", "Depósitos y transferencias", m.counted.Deposit),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m CloseModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Cierre del %s", FormatDate(m.date)))

	var body string

	switch m.state {
	case closeStateLoading, closeStateWorking:
		body = fmt.Sprintf("%s Procesando...", m.spinner.View())
	case closeStateCounted:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			summarizeExpected(m.expected), "    ", m.form.View())
	case closeStatePath:
		body = m.form.View()
	case closeStatePreview:
		body = m.viewPreview()
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
}

func (m CloseModel) viewPreview() string {
	var parts []string

	if m.err != nil {
		parts = append(parts, errorStyle.Render(describeError(m.err)))
	}

	if m.result != nil {
		parts = append(parts, summarizeResult(*m.result))
	}

	if m.closed {
		parts = append(parts, okStyle.Render("Día cerrado."))
	}

	if m.status != "" {
		parts = append(parts, faintStyle.Render(m.status))
	}

	return strings.Join(parts, "\n\n")
}

func summarizeExpected(exp reconciliation.Expected) string {
	var b strings.Builder

	b.WriteString("Según facturación:\n\n")

	for _, c := range reconciliation.Channels {
		fmt.Fprintf(&b, "%-10s %12s\n", channelNames[c], FormatAmount(exp.Amounts.Get(c)))
	}

	fmt.Fprintf(&b, "\nIngresos   %12s\n", FormatAmount(exp.TotalRevenue))
	fmt.Fprintf(&b, "Gastos ef. %12s", FormatAmount(exp.CashExpenses))

	return b.String()
}

// summarizeResult renders the per-channel comparison and the verdict.
func summarizeResult(res reconciliation.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-10s %12s %12s %12s\n", "Canal", "Esperado", "Contado", "Diferencia")

	for _, c := range reconciliation.Channels {
		diff := res.Difference.Get(c)

		line := fmt.Sprintf("%-10s %12s %12s %12s",
			channelNames[c], FormatAmount(res.Expected.Get(c)), FormatAmount(res.Counted.Get(c)), FormatAmount(diff))

		if !diff.Abs().LessThan(res.Tolerance) {
			line = errorStyle.Render(line)
		}

		b.WriteString(line + "\n")
	}

	b.WriteString("\n")

	if res.IsBalanced {
		b.WriteString(okStyle.Bold(true).Render("CUADRA"))
	} else {
		b.WriteString(errorStyle.Bold(true).Render("DESCUADRE"))
	}

	return b.String()
}

// Messages

type expectedMsg struct {
	expected reconciliation.Expected
	err      error
}

func (m CloseModel) loadExpectedCmd() tea.Cmd {
	date := m.date

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		exp, err := m.svc.Expected(ctx, date)

		return expectedMsg{expected: exp, err: err}
	}
}

type closeResultMsg struct {
	result *reconciliation.Result
	closed bool
	text   string
	err    error
}

func (m CloseModel) previewCmd() tea.Cmd {
	date, in := m.date, m.counted

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Preview(ctx, date, in)

		return closeResultMsg{result: &res, err: err}
	}
}

func (m CloseModel) closeCmd() tea.Cmd {
	date, in, by := m.date, m.counted, m.Session.Actor

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		snap, err := m.svc.Close(ctx, date, in, by)
		if err != nil {
			return closeResultMsg{err: err}
		}

		return closeResultMsg{result: &snap.Result, closed: true}
	}
}

func (m CloseModel) exportCmd() tea.Cmd {
	date, in, dir := m.date, m.counted, m.path

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		report, err := m.svc.Report(ctx, date, in)
		if err != nil {
			return closeResultMsg{err: err}
		}

		path, err := writeWorkbook(dir, fmt.Sprintf("cierre_%s.xlsx", FormatDate(date)), func(f *os.File) error {
			return export.WriteReconciliation(f, *report)
		})
		if err != nil {
			return closeResultMsg{err: err}
		}

		return closeResultMsg{result: &report.Result, text: "Exportado a " + path}
	}
}

// writeWorkbook creates dir when needed and writes name inside it.
func writeWorkbook(dir, name string, write func(f *os.File) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	return path, nil
}
