package clinicapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
)

// The platform services are loosely typed: the same field may arrive as a
// string, a number, a list or an object depending on the service version.
// Everything in this file turns those shapes into fixed Go types; nothing
// outside it inspects raw payloads.

var jsonNull = []byte("null")

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

// flexString accepts strings, numbers and booleans
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if isEmptyJSON(b) {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*s = flexString(strconv.FormatBool(flag))
		return nil
	}
	// Objects and arrays carry no usable scalar; keep their text.
	*s = flexString(bytes.TrimSpace(b))
	return nil
}

func (s flexString) String() string { return string(s) }

// flexNumber accepts numbers and numeric strings
type flexNumber struct {
	value float64
	set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber{}
	if isEmptyJSON(b) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = flexNumber{value: f, set: true}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*n = flexNumber{value: f, set: true}
		}
	}
	return nil
}

// truthy mirrors "present and non-zero"
func (n flexNumber) truthy() bool { return n.set && n.value != 0 }

// stringList accepts a single string, a list of strings or a list of
// objects carrying a name
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	*l = nil
	if isEmptyJSON(b) {
		return nil
	}
	var single flexString
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		if err := json.Unmarshal(b, &single); err != nil {
			return err
		}
		if single != "" {
			*l = stringList{single.String()}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	out := make(stringList, 0, len(items))
	for _, item := range items {
		var named struct {
			Name flexString `json:"name"`
		}
		if bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			if err := json.Unmarshal(item, &named); err == nil && named.Name != "" {
				out = append(out, named.Name.String())
			}
			continue
		}
		var s flexString
		if err := json.Unmarshal(item, &s); err == nil && s != "" {
			out = append(out, s.String())
		}
	}
	*l = out
	return nil
}

// envelope is the {success, message, data} wrapper used by the auth service
type envelope struct {
	Success *bool           `json:"success"`
	Message flexString      `json:"message"`
	Error   flexString      `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

// decodeErrorPayload extracts the message and error fields of a failure body
func decodeErrorPayload(raw []byte) (message, errorText string) {
	var payload struct {
		Message flexString `json:"message"`
		Error   flexString `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", ""
	}
	return payload.Message.String(), payload.Error.String()
}

type addressObject struct {
	FormattedAddress flexString `json:"formattedAddress"`
	Street           flexString `json:"street"`
	City             flexString `json:"city"`
	State            flexString `json:"state"`
	Country          flexString `json:"country"`
	Zip              flexString `json:"zip"`
	ZipCode          flexString `json:"zipCode"`
}

// decodeAddress normalizes the string-or-object address field. The
// structured parts are returned for the city/state/location fallbacks.
func decodeAddress(raw json.RawMessage) (string, entities.StructuredAddress) {
	if isEmptyJSON(raw) {
		return entities.AddressNotAvailable, entities.StructuredAddress{}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text = strings.TrimSpace(text); text == "" {
			return entities.AddressNotAvailable, entities.StructuredAddress{}
		}
		return text, entities.StructuredAddress{FormattedAddress: text}
	}

	var obj addressObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return entities.AddressNotAvailable, entities.StructuredAddress{}
	}
	zip := obj.Zip
	if zip == "" {
		zip = obj.ZipCode
	}
	structured := entities.StructuredAddress{
		FormattedAddress: obj.FormattedAddress.String(),
		Street:           obj.Street.String(),
		City:             obj.City.String(),
		State:            obj.State.String(),
		Country:          obj.Country.String(),
		Zip:              zip.String(),
	}
	return structured.Format(), structured
}

// clinicRecord is a clinic as returned by view-clinic and location-based-clinics
type clinicRecord struct {
	ID                flexString      `json:"_id"`
	AltID             flexString      `json:"id"`
	Name              flexString      `json:"name"`
	Type              flexString      `json:"type"`
	Address           json.RawMessage `json:"address"`
	City              flexString      `json:"city"`
	State             flexString      `json:"state"`
	Pincode           flexString      `json:"pincode"`
	Phone             flexString      `json:"phone"`
	PhoneNumber       flexString      `json:"phoneNumber"`
	Email             flexString      `json:"email"`
	Image             flexString      `json:"image"`
	Services          stringList      `json:"services"`
	OpenHours         flexString      `json:"openHours"`
	RatingAvg         flexNumber      `json:"ratingAvg"`
	Rating            flexNumber      `json:"rating"`
	TotalReviews      flexNumber      `json:"totalReviews"`
	Distance          flexNumber      `json:"distance"`
	DistanceKm        flexNumber      `json:"distanceKm"`
	AcceptingPatients *bool           `json:"acceptingPatients"`
}

func (r clinicRecord) identified() bool {
	return r.ID != "" || r.AltID != "" || r.Name != ""
}

func (r clinicRecord) toFacility(fallbackID string) *entities.Facility {
	address, parts := decodeAddress(r.Address)

	facility := &entities.Facility{
		ID:                firstNonEmpty(r.ID.String(), r.AltID.String(), fallbackID),
		Name:              firstNonEmpty(r.Name.String(), entities.UnnamedFacility),
		Type:              entities.ParseFacilityType(r.Type.String()),
		Address:           address,
		City:              firstNonEmpty(r.City.String(), parts.City),
		State:             firstNonEmpty(r.State.String(), parts.State),
		Pincode:           firstNonEmpty(r.Pincode.String(), parts.Zip),
		Phone:             firstNonEmpty(r.Phone.String(), r.PhoneNumber.String(), entities.PhoneNotAvailable),
		Email:             r.Email.String(),
		Image:             r.Image.String(),
		OpenHours:         firstNonEmpty(r.OpenHours.String(), entities.DefaultOpenHours),
		Rating:            entities.DefaultFacilityRating,
		AcceptingPatients: true,
	}
	facility.Location = firstNonEmpty(parts.City, parts.State, secondSegment(parts.FormattedAddress), r.City.String(), entities.LocationUnknown)

	if len(r.Services) > 0 {
		facility.Services = []string(r.Services)
	} else {
		facility.Services = append([]string(nil), entities.DefaultFacilityServices...)
	}
	if facility.Image == "" {
		facility.Image = entities.DefaultImage(facility.Type)
	}
	switch {
	case r.RatingAvg.truthy():
		facility.Rating = r.RatingAvg.value
	case r.Rating.truthy():
		facility.Rating = r.Rating.value
	}
	if r.TotalReviews.set {
		facility.ReviewCount = int(r.TotalReviews.value)
	}
	if r.AcceptingPatients != nil {
		facility.AcceptingPatients = *r.AcceptingPatients
	}
	switch {
	case r.Distance.set:
		d := r.Distance.value
		facility.DistanceKm = &d
	case r.DistanceKm.set:
		d := r.DistanceKm.value
		facility.DistanceKm = &d
	}
	return facility
}

// decodeClinic unwraps an optional envelope around a single clinic. ok is
// false for a non-success envelope or a body carrying no clinic.
func decodeClinic(raw json.RawMessage, fallbackID string) (*entities.Facility, string, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", false
	}
	if env.failed() {
		return nil, firstNonEmpty(env.Message.String(), env.Error.String()), false
	}

	payload := raw
	if !isEmptyJSON(env.Data) {
		payload = env.Data
	}
	var record clinicRecord
	if err := json.Unmarshal(payload, &record); err != nil || !record.identified() {
		return nil, env.Message.String(), false
	}
	return record.toFacility(fallbackID), "", true
}

// decodeClinicList decodes the nearby-clinics envelope
func decodeClinicList(raw json.RawMessage) ([]*entities.Facility, string, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", false
	}
	if env.failed() || isEmptyJSON(env.Data) {
		return nil, firstNonEmpty(env.Message.String(), env.Error.String()), false
	}

	var records []clinicRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, "clinic list is not an array", false
	}
	facilities := make([]*entities.Facility, 0, len(records))
	for _, r := range records {
		if !r.identified() {
			continue
		}
		facilities = append(facilities, r.toFacility(""))
	}
	return facilities, "", true
}

type departmentsResponse struct {
	Departments stringList `json:"departments"`
	Data        *struct {
		Departments stringList `json:"departments"`
	} `json:"data"`
}

func (r departmentsResponse) names() []string {
	list := r.Departments
	if len(list) == 0 && r.Data != nil {
		list = r.Data.Departments
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, name := range list {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

type availabilityWindowRecord struct {
	DayOfWeek flexString `json:"dayOfWeek"`
	StartTime flexString `json:"startTime"`
	EndTime   flexString `json:"endTime"`
	IsActive  bool       `json:"isActive"`
}

type doctorAvailabilityRecord struct {
	DoctorID flexString `json:"doctorId"`
	Doctor   *struct {
		ID    flexString `json:"_id"`
		Name  flexString `json:"name"`
		Image flexString `json:"image"`
	} `json:"doctor"`
	Specialization stringList                 `json:"specialization"`
	Experience     flexString                 `json:"experience"`
	Rating         flexNumber                 `json:"rating"`
	Availability   []availabilityWindowRecord `json:"availability"`
}

type doctorsResponse struct {
	Doctors []doctorAvailabilityRecord `json:"doctors"`
}

func (r doctorAvailabilityRecord) toRecord() providers.DoctorRecord {
	record := providers.DoctorRecord{
		ID:              r.DoctorID.String(),
		Specializations: []string(r.Specialization),
		Experience:      r.Experience.String(),
	}
	if r.Doctor != nil {
		record.ID = firstNonEmpty(record.ID, r.Doctor.ID.String())
		record.Name = r.Doctor.Name.String()
		record.Image = r.Doctor.Image.String()
	}
	if r.Rating.truthy() {
		rating := r.Rating.value
		record.Rating = &rating
	}
	record.Windows = make([]entities.AvailabilityWindow, 0, len(r.Availability))
	for _, w := range r.Availability {
		record.Windows = append(record.Windows, entities.AvailabilityWindow{
			Day:       w.DayOfWeek.String(),
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
			Active:    w.IsActive,
		})
	}
	return record
}

type idHolder struct {
	ID    flexString `json:"_id"`
	AltID flexString `json:"id"`
	Name  flexString `json:"name"`
	Email flexString `json:"email"`
}

func (h idHolder) id() string { return firstNonEmpty(h.ID.String(), h.AltID.String()) }

func decodeIDHolder(raw json.RawMessage) (idHolder, bool) {
	var h idHolder
	if isEmptyJSON(raw) || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return h, false
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return h, false
	}
	return h, true
}

// decodePatientID looks for the new patient's id under data._id, then
// patient._id, then a top-level _id.
func decodePatientID(raw json.RawMessage) string {
	var body struct {
		Data    json.RawMessage `json:"data"`
		Patient json.RawMessage `json:"patient"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if h, ok := decodeIDHolder(body.Data); ok && h.ID != "" {
		return h.ID.String()
	}
	if h, ok := decodeIDHolder(body.Patient); ok && h.ID != "" {
		return h.ID.String()
	}
	if h, ok := decodeIDHolder(raw); ok && h.ID != "" {
		return h.ID.String()
	}
	return ""
}

// decodePatients reads patients[] or, when that is empty, a single patient
func decodePatients(raw json.RawMessage) []entities.Patient {
	var body struct {
		Patients []json.RawMessage `json:"patients"`
		Patient  json.RawMessage   `json:"patient"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}

	candidates := body.Patients
	if len(candidates) == 0 && !isEmptyJSON(body.Patient) {
		candidates = []json.RawMessage{body.Patient}
	}

	patients := make([]entities.Patient, 0, len(candidates))
	for _, c := range candidates {
		h, ok := decodeIDHolder(c)
		if !ok || h.id() == "" {
			continue
		}
		patients = append(patients, entities.Patient{
			ID:    h.id(),
			Name:  h.Name.String(),
			Email: h.Email.String(),
		})
	}
	return patients
}

// decodeConfirmation keeps the whole booking response and lifts the status
// (data.status, else status) and message out of it
func decodeConfirmation(raw json.RawMessage) *entities.AppointmentConfirmation {
	confirmation := &entities.AppointmentConfirmation{Raw: map[string]any{}}
	if err := json.Unmarshal(raw, &confirmation.Raw); err != nil {
		confirmation.Raw = map[string]any{}
	}

	var body struct {
		Status  flexString      `json:"status"`
		Message flexString      `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return confirmation
	}
	confirmation.Message = body.Message.String()
	confirmation.Status = body.Status.String()

	if bytes.HasPrefix(bytes.TrimSpace(body.Data), []byte("{")) {
		var data struct {
			Status flexString `json:"status"`
		}
		if err := json.Unmarshal(body.Data, &data); err == nil && data.Status != "" {
			confirmation.Status = data.Status.String()
		}
	}
	return confirmation
}

func secondSegment(formatted string) string {
	parts := strings.Split(formatted, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
