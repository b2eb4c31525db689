package entities

import (
	"fmt"
	"strings"
)

const (
	UnnamedDoctor           = "Unnamed Doctor"
	DefaultDoctorExperience = "5+ years"
	DefaultDoctorRating     = 4.5

	// DefaultDepartment is offered when a facility reports no departments
	DefaultDepartment = "General Medicine"
)

// Doctor is a practitioner bookable in a department
type Doctor struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Specialization  string       `json:"specialization"`
	Specializations []string     `json:"specializations,omitempty"`
	Experience      string       `json:"experience"`
	Rating          float64      `json:"rating"`
	Image           string       `json:"image,omitempty"`
	Availability    Availability `json:"availability"`
}

// Availability lists the days and time slots a doctor can be booked
type Availability struct {
	Days      []string `json:"days"`
	TimeSlots []string `json:"timeSlots"`
}

// AvailabilityWindow is one weekly availability entry as reported by the
// clinic service.
type AvailabilityWindow struct {
	Day       string
	StartTime string
	EndTime   string
	Active    bool
}

// SlotLabel renders the window as "start - end"
func (w AvailabilityWindow) SlotLabel() string {
	return fmt.Sprintf("%s - %s", w.StartTime, w.EndTime)
}

// AvailabilityFromWindows keeps only active windows
func AvailabilityFromWindows(windows []AvailabilityWindow) Availability {
	availability := Availability{Days: []string{}, TimeSlots: []string{}}
	for _, w := range windows {
		if !w.Active {
			continue
		}
		availability.Days = append(availability.Days, w.Day)
		availability.TimeSlots = append(availability.TimeSlots, w.SlotLabel())
	}
	return availability
}

// HasSpecialization reports whether any specialization equals department,
// ignoring case.
func (d *Doctor) HasSpecialization(department string) bool {
	for _, s := range d.Specializations {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(department)) {
			return true
		}
	}
	return false
}

// DepartmentChoices returns the departments a patient may pick from,
// substituting the default department when none are known.
func DepartmentChoices(departments []string) []string {
	if len(departments) == 0 {
		return []string{DefaultDepartment}
	}
	return departments
}
