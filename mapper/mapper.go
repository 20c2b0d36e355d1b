// Package mapper translates between the snake_case rows stored in mongo and the
// camelCase objects the API speaks. Every function here is pure.
package mapper

import "github.com/linesmerrill/motorent-api/models"

// MotorcycleFromRow maps a motorcycles row to its application shape
func MotorcycleFromRow(r models.MotorcycleRow) models.Motorcycle {
	return models.Motorcycle{
		ID:            r.ID,
		Name:          r.Name,
		Brand:         r.Brand,
		Model:         r.Model,
		Year:          r.Year,
		EngineCC:      r.EngineCC,
		Transmission:  r.Transmission,
		Color:         r.Color,
		Description:   r.Description,
		PricePerDay:   r.PricePerDay,
		Availability:  models.Availability(r.Availability),
		ImageURL:      r.ImageURL,
		ImagePublicID: r.ImagePublicID,
		Features:      r.Features,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// MotorcycleToRow maps an application motorcycle back to its stored row
func MotorcycleToRow(m models.Motorcycle) models.MotorcycleRow {
	return models.MotorcycleRow{
		ID:            m.ID,
		Name:          m.Name,
		Brand:         m.Brand,
		Model:         m.Model,
		Year:          m.Year,
		EngineCC:      m.EngineCC,
		Transmission:  m.Transmission,
		Color:         m.Color,
		Description:   m.Description,
		PricePerDay:   m.PricePerDay,
		Availability:  string(m.Availability),
		ImageURL:      m.ImageURL,
		ImagePublicID: m.ImagePublicID,
		Features:      m.Features,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// MotorcyclesFromRows maps a slice of rows, never returning nil
func MotorcyclesFromRows(rows []models.MotorcycleRow) []models.Motorcycle {
	out := make([]models.Motorcycle, 0, len(rows))
	for _, r := range rows {
		out = append(out, MotorcycleFromRow(r))
	}
	return out
}

// ReservationFromRow maps a reservations row to its application shape
func ReservationFromRow(r models.ReservationRow) models.Reservation {
	return models.Reservation{
		ID:            r.ID,
		UserID:        r.UserID,
		MotorcycleID:  r.MotorcycleID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		PickupTime:    r.PickupTime,
		ReturnTime:    r.ReturnTime,
		TotalPrice:    r.TotalPrice,
		Status:        models.ReservationStatus(r.Status),
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		AdminNotes:    r.AdminNotes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ReservationToRow maps an application reservation back to its stored row
func ReservationToRow(r models.Reservation) models.ReservationRow {
	return models.ReservationRow{
		ID:            r.ID,
		UserID:        r.UserID,
		MotorcycleID:  r.MotorcycleID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		PickupTime:    r.PickupTime,
		ReturnTime:    r.ReturnTime,
		TotalPrice:    r.TotalPrice,
		Status:        string(r.Status),
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		AdminNotes:    r.AdminNotes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ReservationsFromRows maps a slice of rows, never returning nil
func ReservationsFromRows(rows []models.ReservationRow) []models.Reservation {
	out := make([]models.Reservation, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReservationFromRow(r))
	}
	return out
}

// TransactionFromRow maps a transactions row. Transactions are read-only from the API.
func TransactionFromRow(r models.TransactionRow) models.Transaction {
	return models.Transaction{
		ID:                r.ID,
		UserID:            r.UserID,
		ReservationID:     r.ReservationID,
		Amount:            r.Amount,
		Currency:          r.Currency,
		Status:            r.Status,
		PaymentMethod:     r.PaymentMethod,
		ProviderReference: r.ProviderReference,
		CreatedAt:         r.CreatedAt,
	}
}

// TransactionsFromRows maps a slice of rows, never returning nil
func TransactionsFromRows(rows []models.TransactionRow) []models.Transaction {
	out := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, TransactionFromRow(r))
	}
	return out
}

// NotificationFromRow maps a notifications row
func NotificationFromRow(r models.NotificationRow) models.Notification {
	return models.Notification{
		ID:            r.ID,
		UserID:        r.UserID,
		Audience:      r.Audience,
		Type:          r.Type,
		Title:         r.Title,
		Message:       r.Message,
		ReservationID: r.ReservationID,
		IsRead:        r.IsRead,
		CreatedAt:     r.CreatedAt,
	}
}

// NotificationsFromRows maps a slice of rows, never returning nil
func NotificationsFromRows(rows []models.NotificationRow) []models.Notification {
	out := make([]models.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, NotificationFromRow(r))
	}
	return out
}

// UserFromRow maps a users (profile) row. Rows without a role are customers.
func UserFromRow(r models.UserRow) models.User {
	role := models.Role(r.Role)
	if role == "" {
		role = models.RoleCustomer
	}
	return models.User{
		ID:        r.ID,
		Email:     r.Email,
		Username:  r.Username,
		FullName:  r.FullName,
		Phone:     r.Phone,
		Address:   r.Address,
		Role:      role,
		AvatarURL: r.AvatarURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// UsersFromRows maps a slice of rows, never returning nil
func UsersFromRows(rows []models.UserRow) []models.User {
	out := make([]models.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, UserFromRow(r))
	}
	return out
}

// DocumentFromRow maps a document_verifications row. The storage path stays server side.
func DocumentFromRow(r models.DocumentRow) models.Document {
	return models.Document{
		ID:              r.ID,
		UserID:          r.UserID,
		DocumentType:    r.DocumentType,
		DocumentURL:     r.DocumentURL,
		Status:          models.DocumentStatus(r.Status),
		RejectionReason: r.RejectionReason,
		ReviewedAt:      r.ReviewedAt,
		CreatedAt:       r.CreatedAt,
	}
}

// DocumentsFromRows maps a slice of rows, never returning nil
func DocumentsFromRows(rows []models.DocumentRow) []models.Document {
	out := make([]models.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, DocumentFromRow(r))
	}
	return out
}
