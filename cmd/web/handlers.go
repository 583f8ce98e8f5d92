package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/TulasiR141/otopilot/internal/assessment"
	"github.com/TulasiR141/otopilot/internal/catalog"
	"github.com/TulasiR141/otopilot/internal/decisiontree"
	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/repositories"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type patientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

type patientResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

const dateOfBirthLayout = "2006-01-02"

func (app *application) createPatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := app.readJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	dateOfBirth, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
	if err != nil || req.FirstName == "" || req.LastName == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	id, err := app.patients.Create(r.Context(), models.Patient{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dateOfBirth,
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, patientResponse{
		ID:          id,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
	})
}

func (app *application) listPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := app.patients.List(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	response := make([]patientResponse, 0, len(patients))
	for _, patient := range patients {
		response = append(response, patientResponse{
			ID:          patient.ID,
			FirstName:   patient.FirstName,
			LastName:    patient.LastName,
			DateOfBirth: patient.DateOfBirth.Format(dateOfBirthLayout),
		})
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

// checkPatient resolves the {patientID} path segment to a known patient. It
// writes the error response itself and reports success with ok.
func (app *application) checkPatient(w http.ResponseWriter, r *http.Request) (int64, bool) {
	patientID, err := patientIDFromPath(r)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return 0, false
	}
	if _, err = app.patients.Get(r.Context(), patientID); err != nil {
		if errors.Is(err, repositories.ErrPatientNotFound) {
			app.clientError(w, r, http.StatusNotFound)
		} else {
			app.serverError(w, r, err)
		}
		return 0, false
	}
	return patientID, true
}

type advanceResponse struct {
	NodeID      string              `json:"node_id"`
	NodeType    string              `json:"node_type"`
	Node        models.DecisionNode `json:"node"`
	EndOfPath   bool                `json:"end_of_path"`
	FinalAction string              `json:"final_action,omitempty"`
}

func newAdvanceResponse(result *assessment.AdvanceResult) advanceResponse {
	return advanceResponse{
		NodeID:      result.NodeID,
		NodeType:    result.NodeType,
		Node:        result.Node,
		EndOfPath:   result.EndOfPath,
		FinalAction: result.FinalAction,
	}
}

// assessmentError maps engine errors onto HTTP statuses: validation to 400,
// lookup misses to 404, broken tree data to 500.
func (app *application) assessmentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assessment.ErrEmptyAnswer):
		app.clientError(w, r, http.StatusBadRequest)
	case errors.Is(err, decisiontree.ErrNoSuccessor):
		app.serverError(w, r, err)
	case errors.Is(err, decisiontree.ErrNodeNotFound),
		errors.Is(err, repositories.ErrNoActiveAssessment),
		errors.Is(err, repositories.ErrAssessmentNotFound):
		app.clientError(w, r, http.StatusNotFound)
	default:
		app.serverError(w, r, err)
	}
}

// startAssessment advances from the tree's root node for the patient named by
// the patient_id query parameter.
func (app *application) startAssessment(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(r.URL.Query().Get("patient_id"), 10, 64)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if _, err = app.patients.Get(r.Context(), patientID); err != nil {
		if errors.Is(err, repositories.ErrPatientNotFound) {
			app.clientError(w, r, http.StatusNotFound)
		} else {
			app.serverError(w, r, err)
		}
		return
	}

	tree, err := app.trees.Load(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	result, err := app.engine.Advance(r.Context(), patientID, tree.Root())
	if err != nil {
		app.assessmentError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newAdvanceResponse(result))
}

type submitAnswerRequest struct {
	NodeID     string              `json:"node_id"`
	Answer     string              `json:"answer"`
	Commentary string              `json:"commentary,omitempty"`
	Filters    []models.FilterSpec `json:"filters,omitempty"`
}

func (app *application) submitAnswer(w http.ResponseWriter, r *http.Request) {
	patientID, ok := app.checkPatient(w, r)
	if !ok {
		return
	}
	var req submitAnswerRequest
	if err := app.readJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	result, err := app.engine.SubmitAnswer(r.Context(), patientID, assessment.SubmitAnswerInput{
		NodeID:     req.NodeID,
		Answer:     req.Answer,
		Commentary: req.Commentary,
		Filters:    req.Filters,
	})
	if err != nil {
		app.assessmentError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newAdvanceResponse(result))
}

type completeRequest struct {
	FinalNodeID    string `json:"final_node_id"`
	FinalAction    string `json:"final_action,omitempty"`
	TotalQuestions int    `json:"total_questions"`
}

type completionResponse struct {
	AssessmentID      string                  `json:"assessment_id"`
	Status            models.AssessmentStatus `json:"status"`
	QuestionsAnswered int                     `json:"questions_answered"`
	TotalQuestions    int                     `json:"total_questions"`
	CompletedAt       time.Time               `json:"completed_at"`
	TemplateTag       models.TemplateTag      `json:"template_tag"`
	KeyFindings       []string                `json:"key_findings"`
	Recommendation    string                  `json:"recommendation"`
	NextSteps         string                  `json:"next_steps"`
	ModuleName        string                  `json:"module_name,omitempty"`
	Devices           []models.HearingAid     `json:"devices"`
}

func (app *application) completeAssessment(w http.ResponseWriter, r *http.Request) {
	patientID, ok := app.checkPatient(w, r)
	if !ok {
		return
	}
	var req completeRequest
	if err := app.readJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	summary, err := app.engine.Complete(r.Context(), patientID, assessment.CompleteInput{
		FinalNodeID:    req.FinalNodeID,
		FinalAction:    req.FinalAction,
		TotalQuestions: req.TotalQuestions,
	})
	if err != nil {
		app.assessmentError(w, r, err)
		return
	}

	devices := summary.Devices
	if devices == nil {
		devices = []models.HearingAid{}
	}
	app.writeJSON(w, r, http.StatusOK, completionResponse{
		AssessmentID:      summary.AssessmentID,
		Status:            summary.Status,
		QuestionsAnswered: summary.QuestionsAnswered,
		TotalQuestions:    summary.TotalQuestions,
		CompletedAt:       summary.CompletedAt,
		TemplateTag:       summary.TemplateTag,
		KeyFindings:       summary.KeyFindings,
		Recommendation:    summary.Recommendation,
		NextSteps:         summary.NextSteps,
		ModuleName:        summary.ModuleName,
		Devices:           devices,
	})
}

func (app *application) deleteAnswer(w http.ResponseWriter, r *http.Request) {
	patientID, ok := app.checkPatient(w, r)
	if !ok {
		return
	}
	if err := app.engine.DeleteAnswer(r.Context(), patientID, r.PathValue("questionID")); err != nil {
		app.assessmentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) catalogCount(w http.ResponseWriter, r *http.Request) {
	count, err := app.catalog.CountAll(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]int{"count": count})
}

func (app *application) catalogFieldValues(w http.ResponseWriter, r *http.Request) {
	field := r.PathValue("field")
	values, err := app.catalog.DistinctValues(r.Context(), field)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidField) {
			app.clientError(w, r, http.StatusBadRequest)
		} else {
			app.serverError(w, r, err)
		}
		return
	}
	if values == nil {
		values = []string{}
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"field": field, "values": values})
}

// reloadTree re-reads the decision tree and recommendation templates so
// clinical content updates do not require a restart.
func (app *application) reloadTree(w http.ResponseWriter, r *http.Request) {
	tree, err := app.trees.Reload(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if _, err = app.templates.Reload(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]int{
		"nodes":   len(tree.Nodes),
		"modules": len(tree.Modules),
	})
}
