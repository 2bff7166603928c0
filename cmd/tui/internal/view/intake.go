package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/catalog"
	"github.com/MrJamesThe3rd/frontdesk/internal/export"
)

type intakeState int

const (
	intakeStateLoading intakeState = iota
	intakeStateForm
	intakeStateSaving
	intakeStateResult
)

var tierLabels = []struct {
	tier  billing.ChargeTier
	label string
}{
	{billing.TierNormal, "Normal"},
	{billing.TierSocial, "Social"},
	{billing.TierSpecial, "Especial"},
	{billing.TierCustom, "Precio acordado"},
}

// intakeValues are the raw answers of the intake form.
type intakeValues struct {
	Patient     string
	DoctorID    string
	Mobile      bool
	Method      string
	Tier        string
	Studies     []string
	CustomPrice string
	Plate       bool
	PlateFee    string
	Report      bool
	ReportFee   string
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "Q"))
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: monto inválido %q", field, s)
	}

	return d, nil
}

// params turns the form answers into a create request. Business validation
// stays in the billing service.
func (v intakeValues) params(date time.Time) (billing.CreateParams, error) {
	p := billing.CreateParams{
		Date:            date,
		PatientName:     v.Patient,
		IsMobileService: v.Mobile,
		PaymentMethod:   billing.PaymentMethod(v.Method),
		ChargeTier:      billing.ChargeTier(v.Tier),
	}

	if v.DoctorID == "" {
		p.NoDoctorInfo = true
	} else {
		id, err := uuid.Parse(v.DoctorID)
		if err != nil {
			return billing.CreateParams{}, fmt.Errorf("médico inválido: %w", err)
		}

		p.DoctorID = &id
	}

	var price *decimal.Decimal

	if p.ChargeTier == billing.TierCustom {
		d, err := parseAmount("precio", v.CustomPrice)
		if err != nil {
			return billing.CreateParams{}, err
		}

		price = &d
	}

	for _, s := range v.Studies {
		id, err := uuid.Parse(s)
		if err != nil {
			return billing.CreateParams{}, fmt.Errorf("estudio inválido: %w", err)
		}

		p.Items = append(p.Items, billing.ItemParams{StudyID: id, Price: price})
	}

	if v.Mobile {
		var err error

		p.Extras.ImagingPlate = v.Plate
		if p.Extras.ImagingPlateFee, err = parseAmount("placa", v.PlateFee); err != nil {
			return billing.CreateParams{}, err
		}

		p.Extras.Report = v.Report
		if p.Extras.ReportFee, err = parseAmount("informe", v.ReportFee); err != nil {
			return billing.CreateParams{}, err
		}
	}

	return p, nil
}

// IntakeModel registers a new patient visit for today.
type IntakeModel struct {
	CommonModel
	billing *billing.Service
	catalog *catalog.Service

	state   intakeState
	studies []*catalog.Study
	doctors []*catalog.Doctor
	form    *huh.Form

	created *billing.Record
	err     error
}

func NewIntakeModel(session Session, billingSvc *billing.Service, catalogSvc *catalog.Service) IntakeModel {
	return IntakeModel{
		CommonModel: CommonModel{Session: session},
		billing:     billingSvc,
		catalog:     catalogSvc,
		state:       intakeStateLoading,
	}
}

func (m IntakeModel) Title() string { return "Nuevo paciente" }

func (m IntakeModel) ShortHelp() string {
	if m.state == intakeStateResult {
		return "Enter: otro paciente | Esc: menú"
	}

	return "Esc: menú"
}

func (m IntakeModel) Init() tea.Cmd {
	return m.loadCatalogCmd()
}

func (m IntakeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = intakeStateResult

			return m, nil
		}

		m.studies = msg.studies
		m.doctors = msg.doctors
		m.form = m.buildForm()
		m.state = intakeStateForm

		return m, m.form.Init()

	case intakeSavedMsg:
		m.state = intakeStateResult
		m.created = msg.record
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == intakeStateResult && msg.Type == tea.KeyEnter && len(m.studies) > 0 {
			m.created, m.err = nil, nil
			m.form = m.buildForm()
			m.state = intakeStateForm

			return m, m.form.Init()
		}
	}

	if m.state != intakeStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = intakeStateSaving

	return m, m.saveCmd(m.values())
}

func (m IntakeModel) values() intakeValues {
	studies, _ := m.form.Get("studies").([]string)

	return intakeValues{
		Patient:     m.form.GetString("patient"),
		DoctorID:    m.form.GetString("doctor"),
		Mobile:      m.form.GetBool("mobile"),
		Method:      m.form.GetString("method"),
		Tier:        m.form.GetString("tier"),
		Studies:     studies,
		CustomPrice: m.form.GetString("custom_price"),
		Plate:       m.form.GetBool("plate"),
		PlateFee:    m.form.GetString("plate_fee"),
		Report:      m.form.GetBool("report"),
		ReportFee:   m.form.GetString("report_fee"),
	}
}

func (m IntakeModel) buildForm() *huh.Form {
	doctorOpts := []huh.Option[string]{huh.NewOption("Sin información de médico", "")}
	for _, d := range m.doctors {
		doctorOpts = append(doctorOpts, huh.NewOption(d.Name, d.ID.String()))
	}

	methodOpts := make([]huh.Option[string], 0, len(billing.PaymentMethods))
	for _, pm := range billing.PaymentMethods {
		methodOpts = append(methodOpts, huh.NewOption(export.MethodLabel(pm), string(pm)))
	}

	tierOpts := make([]huh.Option[string], 0, len(tierLabels))
	for _, t := range tierLabels {
		tierOpts = append(tierOpts, huh.NewOption(t.label, string(t.tier)))
	}

	studyOpts := make([]huh.Option[string], 0, len(m.studies))
	for _, s := range m.studies {
		studyOpts = append(studyOpts, huh.NewOption(fmt.Sprintf("%s  %s (%s)", s.Code, s.Name, FormatAmount(s.PriceNormal)), s.ID.String()))
	}

	amount := func(s string) error {
		_, err := parseAmount("monto", s)
		return err
	}

	var form *huh.Form

	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("patient").
				Title("Paciente").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("el nombre es obligatorio")
					}
					return nil
				}),
			huh.NewSelect[string]().Key("doctor").Title("Médico que refiere").Options(doctorOpts...),
			huh.NewConfirm().Key("mobile").Title("¿Servicio móvil?").Affirmative("Sí").Negative("No"),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Key("method").Title("Método de pago").Options(methodOpts...),
			huh.NewSelect[string]().Key("tier").Title("Tarifa").Options(tierOpts...),
			huh.NewMultiSelect[string]().
				Key("studies").
				Title("Estudios").
				Options(studyOpts...).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return fmt.Errorf("seleccione al menos un estudio")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().Key("custom_price").Title("Precio acordado por estudio").Validate(amount),
		).WithHideFunc(func() bool {
			return form.GetString("tier") != string(billing.TierCustom)
		}),
		huh.NewGroup(
			huh.NewConfirm().Key("plate").Title("¿Placa?").Affirmative("Sí").Negative("No"),
			huh.NewInput().Key("plate_fee").Title("Cargo por placa").Validate(amount),
			huh.NewConfirm().Key("report").Title("¿Informe?").Affirmative("Sí").Negative("No"),
			huh.NewInput().Key("report_fee").Title("Cargo por informe").Validate(amount),
		).WithHideFunc(func() bool {
			return !form.GetBool("mobile")
		}),
	).WithWidth(60).WithShowHelp(false)

	return form
}

func (m IntakeModel) View() string {
	switch m.state {
	case intakeStateLoading:
		return lipgloss.NewStyle().Padding(1).Render("Cargando catálogo...")
	case intakeStateForm:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Nuevo paciente para %s\n\n%s", activeStyle(FormatDate(m.Session.Today())), m.form.View()),
		)
	case intakeStateSaving:
		return lipgloss.NewStyle().Padding(1).Render("Registrando...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(describeError(m.err)))
	}

	number := "sin número (servicio móvil)"
	if m.created.Ordinal != nil {
		number = fmt.Sprintf("#%d", *m.created.Ordinal)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		okStyle.Bold(true).Render("Paciente registrado"),
		"",
		fmt.Sprintf("Paciente: %s", m.created.PatientName),
		fmt.Sprintf("Turno:    %s", number),
		fmt.Sprintf("Total:    %s", FormatAmount(m.created.Total())),
	))
}

// Messages

type catalogLoadedMsg struct {
	studies []*catalog.Study
	doctors []*catalog.Doctor
	err     error
}

func (m IntakeModel) loadCatalogCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		studies, err := m.catalog.ListStudies(ctx, false)
		if err != nil {
			return catalogLoadedMsg{err: err}
		}

		if len(studies) == 0 {
			return catalogLoadedMsg{err: fmt.Errorf("el catálogo está vacío; importe una lista de precios primero")}
		}

		doctors, err := m.catalog.ListDoctors(ctx)

		return catalogLoadedMsg{studies: studies, doctors: doctors, err: err}
	}
}

type intakeSavedMsg struct {
	record *billing.Record
	err    error
}

func (m IntakeModel) saveCmd(v intakeValues) tea.Cmd {
	date, by := m.Session.Today(), m.Session.Actor

	return func() tea.Msg {
		params, err := v.params(date)
		if err != nil {
			return intakeSavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		rec, err := m.billing.Create(ctx, params, by)

		return intakeSavedMsg{record: rec, err: err}
	}
}
