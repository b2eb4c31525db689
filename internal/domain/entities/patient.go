package entities

// PatientRoleName is the role sent with every registration and booking
const PatientRoleName = "patient"

// PatientRegistration is the payload registering a patient with a clinic
type PatientRegistration struct {
	UserRole string `json:"userRole"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Gender   Gender `json:"gender"`
}

// Patient is a patient record known to the patient service
type Patient struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// AppointmentRequest is the payload booking an appointment slot
type AppointmentRequest struct {
	PatientID       string `json:"patientId"`
	UserRole        string `json:"userRole"`
	Department      string `json:"department"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	DoctorID        string `json:"doctorId"`
}

// AppointmentConfirmation is the booking response. Raw keeps the whole
// payload so nothing the clinic sends back is lost.
type AppointmentConfirmation struct {
	Status  string
	Message string
	Raw     map[string]any
}
