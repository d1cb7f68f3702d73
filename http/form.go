package http

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"heartfelt/assessment"
	"heartfelt/ml"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type yesNoQuestion struct {
	Name   string
	Prompt string
}

// Questions in the order the form shows them.
var yesNoQuestions = []yesNoQuestion{
	{"smoker", "Have you smoked at least 100 cigarettes in your entire life? [Note: 5 packs = 100 cigarettes]"},
	{"heavy_alcohol", "Are you a heavy drinker? (adult men having more than 14 drinks per week and adult women having more than 7 drinks per week)"},
	{"physical_activity_30d", "Have you done any physical activity in the past 30 days aside from your regular job?"},
	{"stroke_history", "Have you ever had a stroke?"},
	{"difficulty_walking", "Do you have serious difficulty walking or climbing stairs?"},
	{"skin_cancer_history", "Have you ever had skin cancer?"},
	{"kidney_disease_history", "Not including kidney stones, bladder infection or incontinence, were you ever told you had kidney disease?"},
	{"asthma_history", "Have you ever had asthma?"},
}

type pageData struct {
	Values        map[string]string
	Genders       []string
	GeneralHealth []string
	Diabetic      []string
	YesNo         []yesNoQuestion
	Result        *assessment.Result
	Errors        []fieldError
	MaxSleep      int
	MaxBadDays    int
	MinAge        int
	ConfidencePct string
}

func newPageData(values map[string]string) pageData {
	return pageData{
		Values:        values,
		Genders:       ml.GenderOptions(),
		GeneralHealth: ml.GeneralHealthOptions(),
		Diabetic:      ml.DiabeticOptions(),
		YesNo:         yesNoQuestions,
		MaxSleep:      ml.MaxSleep,
		MaxBadDays:    ml.MaxBadDays,
		MinAge:        ml.MinAge,
	}
}

// defaultFormValues mirrors the initial state of the questionnaire widgets.
func defaultFormValues() map[string]string {
	values := map[string]string{
		"height_cm":                "1",
		"weight_kg":                "1",
		"age":                      "18",
		"gender":                   "Male",
		"general_health":           "Excellent",
		"diabetic_status":          "Yes",
		"sleep_hours":              "0",
		"physical_health_bad_days": "0",
		"mental_health_bad_days":   "0",
	}
	for _, q := range yesNoQuestions {
		values[q.Name] = "Yes"
	}
	return values
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, newPageData(defaultFormValues()))
}

func (h *Handlers) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	// Only posted answers count; the widget defaults are for GET / alone.
	values := make(map[string]string, len(r.PostForm))
	for key, v := range r.PostForm {
		if len(v) > 0 {
			values[key] = v[0]
		}
	}
	data := newPageData(values)

	raw, err := parseFormInput(values)
	if err == nil {
		data.Result, err = h.assess("form", raw)
	} else {
		h.reject("form", time.Now())
	}
	if err != nil {
		if !ml.IsValidation(err) {
			h.logger.Error("assessment failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
			http.Error(w, "assessment failed", http.StatusInternalServerError)
			return
		}
		data.Errors = fieldErrors(err)
		h.renderPage(w, http.StatusBadRequest, data)
		return
	}
	data.ConfidencePct = strconv.FormatFloat(data.Result.Confidence*100, 'f', 0, 64)
	h.renderPage(w, http.StatusOK, data)
}

func (h *Handlers) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		h.logger.Error("render form", zap.Error(err))
	}
}

// parseFormInput converts form values into a RawInput, reporting every
// unparsable field at once.
func parseFormInput(values map[string]string) (ml.RawInput, error) {
	var (
		in   ml.RawInput
		errs error
	)
	answer := func(name string) (string, bool) {
		v := strings.TrimSpace(values[name])
		if v == "" {
			errs = multierr.Append(errs, &ml.ValidationError{Field: name, Reason: "is required"})
			return "", false
		}
		return v, true
	}
	intField := func(name string, dst *int) {
		v, ok := answer(name)
		if !ok {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = multierr.Append(errs, &ml.ValidationError{Field: name, Reason: "must be a whole number"})
			return
		}
		*dst = n
	}
	yesNoField := func(name string, dst *bool) {
		s, ok := answer(name)
		if !ok {
			return
		}
		v, err := ml.ParseYesNo(s)
		if err != nil {
			errs = multierr.Append(errs, &ml.ValidationError{Field: name, Reason: err.Error()})
			return
		}
		*dst = v
	}

	intField("height_cm", &in.HeightCM)
	intField("weight_kg", &in.WeightKG)
	intField("age", &in.Age)
	intField("sleep_hours", &in.SleepHours)
	intField("physical_health_bad_days", &in.PhysicalHealthBadDays)
	intField("mental_health_bad_days", &in.MentalHealthBadDays)

	var err error
	if v, ok := answer("gender"); ok {
		if in.Gender, err = ml.ParseGender(v); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if v, ok := answer("general_health"); ok {
		if in.GeneralHealth, err = ml.ParseGeneralHealth(v); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if v, ok := answer("diabetic_status"); ok {
		if in.Diabetic, err = ml.ParseDiabeticStatus(v); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	yesNoField("smoker", &in.Smoker)
	yesNoField("heavy_alcohol", &in.HeavyAlcohol)
	yesNoField("physical_activity_30d", &in.PhysicalActivity)
	yesNoField("stroke_history", &in.Stroke)
	yesNoField("difficulty_walking", &in.DiffWalking)
	yesNoField("skin_cancer_history", &in.SkinCancer)
	yesNoField("kidney_disease_history", &in.KidneyDisease)
	yesNoField("asthma_history", &in.Asthma)

	return in, errs
}
