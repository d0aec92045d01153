package main

import (
	"net/http"
	"strings"

	"github.com/envelopa/dpgf-ingest/internal/response"
	"github.com/envelopa/dpgf-ingest/internal/store"
)

type ListClientsResponse = response.APIResponse[[]store.Client]
type CreateClientResponse = response.APIResponse[*store.Client]
type ListProjectsResponse = response.APIResponse[[]store.Project]
type ListLotsResponse = response.APIResponse[[]store.Lot]
type ListSectionsResponse = response.APIResponse[[]store.Section]
type ListItemsResponse = response.APIResponse[[]store.Item]

// @Summary		List clients
// @Description	Get every client known to the store.
// @Tags			Clients
// @Produce		json
// @Success		200	{object}	ListClientsResponse		"Successfully retrieved clients"
// @Failure		500	{object}	response.ErrorResponse	"Failed to list clients"
// @Router			/clients [get]
func (app *application) handleListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := app.store.Clients.List(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list clients: "+err.Error())
		return
	}

	response := &ListClientsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved clients",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Create client
// @Description	Creates a client ahead of ingestion, so imports attach to it by name.
// @Tags			Clients
// @Accept			json
// @Produce		json
// @Param			client	body		object{nom_client:string}	true	"Client details"
// @Success		201		{object}	CreateClientResponse		"Client created"
// @Failure		400		{object}	response.ErrorResponse		"Invalid request payload or missing fields"
// @Failure		409		{object}	response.ErrorResponse		"Client already exists"
// @Failure		500		{object}	response.ErrorResponse		"Failed to create client"
// @Router			/clients [post]
func (app *application) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"nom_client"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "nom_client is required")
		return
	}

	ctx := r.Context()
	if existing, err := app.store.Clients.GetByName(ctx, input.Name); err == nil && existing != nil {
		writeJSONError(w, http.StatusConflict, "client already exists")
		return
	}

	client := &store.Client{Name: input.Name}
	if err := app.store.Clients.Create(ctx, client); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create client: "+err.Error())
		return
	}

	response := &CreateClientResponse{
		Success: true,
		Data:    client,
		Message: "Client created",
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List projects of a client
// @Description	Get the projects imported for one client.
// @Tags			Projects
// @Produce		json
// @Param			clientID	path		int						true	"Client ID"
// @Success		200			{object}	ListProjectsResponse	"Successfully retrieved projects"
// @Failure		400			{object}	response.ErrorResponse	"Invalid client id"
// @Failure		500			{object}	response.ErrorResponse	"Failed to list projects"
// @Router			/clients/{clientID}/projects [get]
func (app *application) handleListProjects(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "clientID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	ctx := r.Context()
	data, err := app.store.Projects.ListByClient(ctx, clientID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list projects: "+err.Error())
		return
	}

	response := &ListProjectsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved projects",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List lots of a project
// @Description	Get the lots detected in one project's bid files.
// @Tags			Lots
// @Produce		json
// @Param			projectID	path		int						true	"Project ID"
// @Success		200			{object}	ListLotsResponse		"Successfully retrieved lots"
// @Failure		400			{object}	response.ErrorResponse	"Invalid project id"
// @Failure		500			{object}	response.ErrorResponse	"Failed to list lots"
// @Router			/projects/{projectID}/lots [get]
func (app *application) handleListLots(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "projectID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx := r.Context()
	data, err := app.store.Lots.ListByProject(ctx, projectID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list lots: "+err.Error())
		return
	}

	response := &ListLotsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved lots",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List sections of a lot
// @Description	Get the section tree of one lot, flat, ordered by creation.
// @Tags			Sections
// @Produce		json
// @Param			lotID	path		int						true	"Lot ID"
// @Success		200		{object}	ListSectionsResponse	"Successfully retrieved sections"
// @Failure		400		{object}	response.ErrorResponse	"Invalid lot id"
// @Failure		500		{object}	response.ErrorResponse	"Failed to list sections"
// @Router			/lots/{lotID}/sections [get]
func (app *application) handleListSections(w http.ResponseWriter, r *http.Request) {
	lotID, err := parseIDParam(r, "lotID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid lot id")
		return
	}

	ctx := r.Context()
	data, err := app.store.Sections.ListByLot(ctx, lotID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list sections: "+err.Error())
		return
	}

	response := &ListSectionsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved sections",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List items of a section
// @Description	Get the priced work items attached to one section.
// @Tags			Items
// @Produce		json
// @Param			sectionID	path		int						true	"Section ID"
// @Success		200			{object}	ListItemsResponse		"Successfully retrieved items"
// @Failure		400			{object}	response.ErrorResponse	"Invalid section id"
// @Failure		500			{object}	response.ErrorResponse	"Failed to list items"
// @Router			/sections/{sectionID}/items [get]
func (app *application) handleListItems(w http.ResponseWriter, r *http.Request) {
	sectionID, err := parseIDParam(r, "sectionID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	ctx := r.Context()
	data, err := app.store.Items.ListBySection(ctx, sectionID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list items: "+err.Error())
		return
	}

	response := &ListItemsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved items",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
