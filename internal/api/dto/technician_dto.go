package dto

import "github.com/gadgetarian/service-tracker/internal/domain"

// TechnicianRequest mirrors the technician backend's field names.
type TechnicianRequest struct {
	Code     string `json:"kode_teknisi"`
	Name     string `json:"nama_teknisi"`
	Phone    string `json:"nomor_telepon"`
	Password string `json:"password"`
}

// TechnicianResponse omits the password.
type TechnicianResponse struct {
	Code  string `json:"kode_teknisi"`
	Name  string `json:"nama_teknisi"`
	Phone string `json:"nomor_telepon"`
}

// NewTechnicianResponse maps a technician.
func NewTechnicianResponse(t domain.Technician) TechnicianResponse {
	return TechnicianResponse{Code: t.Code, Name: t.Name, Phone: t.Phone}
}
