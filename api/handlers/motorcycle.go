package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/config"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

// MotorcycleService is the part of services.MotorcycleService the handlers use
type MotorcycleService interface {
	List(ctx context.Context, f models.MotorcycleFilter) ([]models.Motorcycle, error)
	Get(ctx context.Context, id string) (models.Motorcycle, error)
	Create(ctx context.Context, in models.Motorcycle) (models.Motorcycle, error)
	Update(ctx context.Context, id string, in models.Motorcycle) (models.Motorcycle, error)
	Delete(ctx context.Context, id string) error
	SetAvailability(ctx context.Context, id string, a models.Availability) (models.Availability, error)
	SetImage(ctx context.Context, id string, f services.Upload) (models.Motorcycle, error)
	CheckAvailability(ctx context.Context, id string, start, end time.Time) (bool, error)
}

// Motorcycle holds the fleet catalog handlers
type Motorcycle struct {
	Service MotorcycleService
}

type availabilityRequest struct {
	Availability models.Availability `json:"availability"`
}

type availabilityResponse struct {
	MotorcycleID string `json:"motorcycleId"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Available    bool   `json:"available"`
}

// MotorcycleListHandler returns the catalog, optionally filtered
func (m Motorcycle) MotorcycleListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.MotorcycleFilter{
		Availability: models.Availability(q.Get("availability")),
		Brand:        q.Get("brand"),
		Search:       q.Get("search"),
	}
	if v := q.Get("maxPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			config.ErrorStatus("invalid maxPrice", http.StatusBadRequest, w, err)
			return
		}
		f.MaxPrice = price
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := m.Service.List(ctx, f)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Motorcycle{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MotorcycleByIDHandler returns one motorcycle
func (m Motorcycle) MotorcycleByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	moto, err := m.Service.Get(ctx, mux.Vars(r)["motorcycle_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moto)
}

// AvailabilityHandler answers whether the motorcycle is free between start and end
func (m Motorcycle) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["motorcycle_id"]
	startRaw, endRaw := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	start, err := time.Parse(time.DateOnly, startRaw)
	if err != nil {
		config.ErrorStatus("start must be a YYYY-MM-DD date", http.StatusBadRequest, w, err)
		return
	}
	end, err := time.Parse(time.DateOnly, endRaw)
	if err != nil {
		config.ErrorStatus("end must be a YYYY-MM-DD date", http.StatusBadRequest, w, err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ok, err := m.Service.CheckAvailability(ctx, id, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{MotorcycleID: id, StartDate: startRaw, EndDate: endRaw, Available: ok})
}

// CreateMotorcycleHandler adds a motorcycle to the fleet
func (m Motorcycle) CreateMotorcycleHandler(w http.ResponseWriter, r *http.Request) {
	var in models.Motorcycle
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	moto, err := m.Service.Create(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, moto)
}

// UpdateMotorcycleHandler edits a motorcycle
func (m Motorcycle) UpdateMotorcycleHandler(w http.ResponseWriter, r *http.Request) {
	var in models.Motorcycle
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	moto, err := m.Service.Update(ctx, mux.Vars(r)["motorcycle_id"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moto)
}

// SetAvailabilityHandler flips a motorcycle between Available, Reserved and In Maintenance
func (m Motorcycle) SetAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	var in availabilityRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id := mux.Vars(r)["motorcycle_id"]
	if _, err := m.Service.SetAvailability(ctx, id, in.Availability); err != nil {
		writeError(w, err)
		return
	}
	moto, err := m.Service.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moto)
}

// UploadImageHandler replaces the catalog image from a multipart "image" field
func (m Motorcycle) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, ok := readUpload(w, r, "image")
	if !ok {
		return
	}
	defer cleanup()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	moto, err := m.Service.SetImage(ctx, mux.Vars(r)["motorcycle_id"], upload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moto)
}

// DeleteMotorcycleHandler removes a motorcycle no reservation references
func (m Motorcycle) DeleteMotorcycleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.Service.Delete(ctx, mux.Vars(r)["motorcycle_id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload pulls one file from a multipart form. Oversized bodies are cut off
// slightly above the upload limit so the service can report the real error.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (services.Upload, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			config.ErrorStatus("expected a multipart form", http.StatusBadRequest, w, err)
			return services.Upload{}, nil, false
		}
		config.ErrorStatus(services.ErrFileTooLarge.Error(), http.StatusRequestEntityTooLarge, w, err)
		return services.Upload{}, nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		config.ErrorStatus("missing file field "+field, http.StatusBadRequest, w, err)
		return services.Upload{}, nil, false
	}
	cleanup := func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, cleanup, true
}
