package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
	"github.com/MrJamesThe3rd/frontdesk/internal/export"
)

// ExpensesModel records what was paid out of the day's till and elsewhere.
type ExpensesModel struct {
	CommonModel
	expenses *expense.Service

	items  []*expense.Expense
	cursor int
	form   *huh.Form

	loading bool
	status  string
}

func NewExpensesModel(session Session, svc *expense.Service) ExpensesModel {
	return ExpensesModel{
		CommonModel: CommonModel{Session: session},
		expenses:    svc,
		loading:     true,
	}
}

func (m ExpensesModel) Title() string { return "Gastos del día" }

func (m ExpensesModel) ShortHelp() string {
	if m.form != nil {
		return "Esc: cancelar"
	}

	return "Esc: menú | a: agregar | x: eliminar | ↑/↓: mover"
}

func (m ExpensesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ExpensesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadExpensesMsg:
		m.loading = false
		if msg.err != nil {
			m.status = describeError(msg.err)
			return m, nil
		}

		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = max(len(m.items)-1, 0)
		}

		return m, nil

	case expenseActionMsg:
		m.form = nil
		m.status = msg.text

		if msg.err != nil {
			m.status = describeError(msg.err)
		}

		return m, m.loadCmd()
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "a":
			m.form = m.buildForm()
			return m, m.form.Init()
		case "x":
			return m, m.deleteCmd()
		}
	}

	return m, nil
}

func (m ExpensesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd(
		m.form.GetString("amount"),
		m.form.GetString("concept"),
		expense.Method(m.form.GetString("method")),
	)
}

func (m ExpensesModel) buildForm() *huh.Form {
	methods := []expense.Method{expense.MethodCash, expense.MethodCard, expense.MethodTransfer}

	opts := make([]huh.Option[string], len(methods))
	for i, em := range methods {
		opts[i] = huh.NewOption(export.ExpenseMethodLabel(em), string(em))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Monto").
				Validate(func(s string) error {
					d, err := parseAmount("monto", s)
					if err != nil {
						return err
					}

					if !d.IsPositive() {
						return fmt.Errorf("el monto debe ser mayor que cero")
					}

					return nil
				}),
			huh.NewInput().Key("concept").Title("Concepto"),
			huh.NewSelect[string]().Key("method").Title("Pagado con").Options(opts...),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ExpensesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Cargando gastos...")
	}

	var (
		b     strings.Builder
		total decimal.Decimal
		cash  decimal.Decimal
	)

	fmt.Fprintf(&b, "Gastos del %s\n\n", activeStyle(FormatDate(m.Session.Today())))

	if len(m.items) == 0 {
		b.WriteString(faintStyle.Render("Sin gastos registrados.") + "\n")
	}

	for i, e := range m.items {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s  %-30s %-14s %12s\n",
			cursor, e.CreatedAt.In(m.Session.Loc).Format("15:04"), e.Concept,
			export.ExpenseMethodLabel(e.Method), FormatAmount(e.Amount))

		total = total.Add(e.Amount)
		if e.IsCash() {
			cash = cash.Add(e.Amount)
		}
	}

	fmt.Fprintf(&b, "\nTotal: %s | En efectivo: %s", FormatAmount(total), FormatAmount(cash))

	content := b.String()

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Nuevo gasto\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadExpensesMsg struct {
	items []*expense.Expense
	err   error
}

func (m ExpensesModel) loadCmd() tea.Cmd {
	date := m.Session.Today()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.expenses.ListByDate(ctx, date)

		return loadExpensesMsg{items: items, err: err}
	}
}

type expenseActionMsg struct {
	text string
	err  error
}

func (m ExpensesModel) createCmd(amount, concept string, method expense.Method) tea.Cmd {
	date, by := m.Session.Today(), m.Session.Actor

	return func() tea.Msg {
		d, err := parseAmount("monto", amount)
		if err != nil {
			return expenseActionMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		_, err = m.expenses.Create(ctx, expense.CreateParams{Date: date, Amount: d, Concept: concept, Method: method}, by)

		return expenseActionMsg{text: "Gasto registrado.", err: err}
	}
}

func (m ExpensesModel) deleteCmd() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}

	id, by := m.items[m.cursor].ID, m.Session.Actor

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.expenses.Delete(ctx, id, by)

		return expenseActionMsg{text: "Gasto eliminado.", err: err}
	}
}
