package domain

import "github.com/yungbote/clinicscribe-backend/internal/domain/consultation"

type Consultation = consultation.Consultation
type AppointmentDispatch = consultation.AppointmentDispatch
