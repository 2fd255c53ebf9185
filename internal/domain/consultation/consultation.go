package consultation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Consultation is one processed recording: the speaker-attributed transcript
// and the SOAP note extracted from it.
type Consultation struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID          string         `gorm:"column:session_id;not null;index" json:"session_id"`
	Realtime           bool           `gorm:"column:realtime;not null;default:false" json:"realtime"`
	MimeType           string         `gorm:"column:mime_type" json:"mime_type,omitempty"`
	AudioBytes         int            `gorm:"column:audio_bytes;not null;default:0" json:"audio_bytes"`
	Granularity        string         `gorm:"column:granularity" json:"granularity"`
	Transcript         string         `gorm:"column:transcript;type:text" json:"transcript"`
	OriginalTranscript string         `gorm:"column:original_transcript;type:text" json:"original_transcript,omitempty"`
	Relabeled          bool           `gorm:"column:relabeled;not null;default:false" json:"relabeled"`
	Segments           datatypes.JSON `gorm:"column:segments" json:"segments"`
	Roles              datatypes.JSON `gorm:"column:roles" json:"roles"`
	SOAP               datatypes.JSON `gorm:"column:soap" json:"soap"`
	PlanText           string         `gorm:"column:plan_text;type:text" json:"plan_text"`
	CreatedAt          time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Consultation) TableName() string { return "consultation" }

func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AppointmentDispatch records one approve-plan call and its outcome.
type AppointmentDispatch struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConsultationID uuid.UUID      `gorm:"type:uuid;column:consultation_id;not null;index" json:"consultation_id"`
	SessionID      string         `gorm:"column:session_id;not null;index" json:"session_id"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	Recipient      string         `gorm:"column:recipient" json:"recipient,omitempty"`
	SendRequested  bool           `gorm:"column:send_requested;not null;default:false" json:"send_requested"`
	Appointment    string         `gorm:"column:appointment;type:text" json:"appointment,omitempty"`
	Medicines      datatypes.JSON `gorm:"column:medicines" json:"medicines,omitempty"`
	Subject        string         `gorm:"column:subject" json:"subject,omitempty"`
	Body           string         `gorm:"column:body;type:text" json:"body,omitempty"`
	Message        string         `gorm:"column:message" json:"message,omitempty"`
	Error          string         `gorm:"column:error" json:"error,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AppointmentDispatch) TableName() string { return "appointment_dispatch" }

func (d *AppointmentDispatch) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
