package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	api := alice.New()

	mux.Handle("GET /api/healthy", api.ThenFunc(app.healthy))

	mux.Handle("POST /api/patients", api.ThenFunc(app.createPatient))
	mux.Handle("GET /api/patients", api.ThenFunc(app.listPatients))

	mux.Handle("GET /api/assessment/start", api.ThenFunc(app.startAssessment))
	mux.Handle("POST /api/patients/{patientID}/answers", api.ThenFunc(app.submitAnswer))
	mux.Handle("POST /api/patients/{patientID}/complete", api.ThenFunc(app.completeAssessment))
	mux.Handle("DELETE /api/patients/{patientID}/answers/{questionID}", api.ThenFunc(app.deleteAnswer))

	mux.Handle("GET /api/catalog/count", api.ThenFunc(app.catalogCount))
	mux.Handle("GET /api/catalog/fields/{field}/values", api.ThenFunc(app.catalogFieldValues))

	mux.Handle("POST /api/tree/reload", api.ThenFunc(app.reloadTree))

	return alice.New(app.recoverPanic, app.logRequest, secureHeaders).Then(mux)
}
