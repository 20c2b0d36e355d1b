package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

var scrambler = models.Motorcycle{
	ID:           "M1",
	Name:         "Scrambler Icon",
	Brand:        "Ducati",
	PricePerDay:  1200,
	Availability: models.AvailabilityAvailable,
}

func TestMotorcycleListHandler(t *testing.T) {
	s := newServer(t)
	f := models.MotorcycleFilter{Availability: models.AvailabilityAvailable, Brand: "Ducati", MaxPrice: 1500}
	s.motorcycles.On("List", mock.Anything, f).Return([]models.Motorcycle{scrambler}, nil)
	s.motorcycles.On("List", mock.Anything, models.MotorcycleFilter{}).Return(nil, nil)

	rr := s.do(t, http.MethodGet, "/api/v1/motorcycles?availability=Available&brand=Ducati&maxPrice=1500", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Scrambler Icon"`)

	rr = s.do(t, http.MethodGet, "/api/v1/motorcycles", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestMotorcycleListHandler_BadPrice(t *testing.T) {
	s := newServer(t)
	rr := s.do(t, http.MethodGet, "/api/v1/motorcycles?maxPrice=cheap", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid maxPrice", decodeError(t, rr).Response.Message)
}

func TestMotorcycleByIDHandler(t *testing.T) {
	s := newServer(t)
	s.motorcycles.On("Get", mock.Anything, "M1").Return(scrambler, nil)
	s.motorcycles.On("Get", mock.Anything, "M404").Return(models.Motorcycle{}, services.ErrNotFound)

	rr := s.do(t, http.MethodGet, "/api/v1/motorcycles/M1", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/motorcycles/M404", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAvailabilityHandler(t *testing.T) {
	s := newServer(t)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	s.motorcycles.On("CheckAvailability", mock.Anything, "M1", start, end).Return(false, nil)

	rr := s.do(t, http.MethodGet, "/api/v1/motorcycles/M1/availability?start=2026-03-10&end=2026-03-12", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"motorcycleId":"M1","startDate":"2026-03-10","endDate":"2026-03-12","available":false}`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/v1/motorcycles/M1/availability?start=03/10/2026&end=2026-03-12", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateMotorcycleHandler(t *testing.T) {
	s := newServer(t)
	in := models.Motorcycle{Name: "Scrambler Icon", Brand: "Ducati", PricePerDay: 1200}
	s.motorcycles.On("Create", mock.Anything, in).Return(scrambler, nil)

	rr := s.do(t, http.MethodPost, "/api/v1/admin/motorcycles", in, &customer)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/admin/motorcycles", in, &operator)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"M1"`)
}

func TestSetAvailabilityHandler(t *testing.T) {
	s := newServer(t)
	s.motorcycles.On("SetAvailability", mock.Anything, "M1", models.AvailabilityMaintenance).
		Return(models.AvailabilityMaintenance, nil)
	updated := scrambler
	updated.Availability = models.AvailabilityMaintenance
	s.motorcycles.On("Get", mock.Anything, "M1").Return(updated, nil)

	rr := s.do(t, http.MethodPut, "/api/v1/admin/motorcycles/M1/availability",
		map[string]string{"availability": "In Maintenance"}, &operator)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"availability":"In Maintenance"`)
}

func TestDeleteMotorcycleHandler(t *testing.T) {
	s := newServer(t)
	s.motorcycles.On("Delete", mock.Anything, "M1").Return(nil)
	s.motorcycles.On("Delete", mock.Anything, "M2").Return(services.ErrInUse)

	rr := s.do(t, http.MethodDelete, "/api/v1/admin/motorcycles/M1", nil, &operator)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodDelete, "/api/v1/admin/motorcycles/M2", nil, &operator)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUploadImageHandler(t *testing.T) {
	s := newServer(t)
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	s.motorcycles.On("SetImage", mock.Anything, "M1", mock.MatchedBy(func(u services.Upload) bool {
		return u.Filename == "bike.jpg" && u.ContentType == "image/jpeg" && u.Size == int64(len(jpeg))
	})).Return(models.Motorcycle{ID: "M1", ImageURL: "https://res.cloudinary.com/demo/image/upload/bike.jpg"}, nil)

	body, contentType := multipartBody(t, "image", "bike.jpg", "image/jpeg", jpeg, nil)
	req := newRequest(t, http.MethodPost, "/api/v1/admin/motorcycles/M1/image", body, s.token(t, operator))
	req.Header.Set("Content-Type", contentType)
	rr := sendRaw(s.router, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "res.cloudinary.com")
}

func TestUploadImageHandler_MissingField(t *testing.T) {
	s := newServer(t)
	body, contentType := multipartBody(t, "photo", "bike.jpg", "image/jpeg", []byte("x"), nil)
	req := newRequest(t, http.MethodPost, "/api/v1/admin/motorcycles/M1/image", body, s.token(t, operator))
	req.Header.Set("Content-Type", contentType)

	assert.Equal(t, http.StatusBadRequest, sendRaw(s.router, req).Code)
}

func TestUploadImageHandler_RejectedType(t *testing.T) {
	s := newServer(t)
	s.motorcycles.On("SetImage", mock.Anything, "M1", mock.Anything).Return(models.Motorcycle{}, services.ErrUnsupportedFileType)

	body, contentType := multipartBody(t, "image", "notes.txt", "text/plain", []byte("hello"), nil)
	req := newRequest(t, http.MethodPost, "/api/v1/admin/motorcycles/M1/image", body, s.token(t, operator))
	req.Header.Set("Content-Type", contentType)

	assert.Equal(t, http.StatusUnsupportedMediaType, sendRaw(s.router, req).Code)
}

// multipartBody builds a form with one file part plus plain fields
func multipartBody(t *testing.T, field, filename, contentType string, content []byte, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}
