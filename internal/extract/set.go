package extract

// Set binds one extractor per booking field. A zero Set uses the package
// defaults; individual fields can be swapped to change how ambiguity is resolved.
type Set struct {
	Date    Func
	Time    Func
	Service Func
	Phone   Func
	Name    Func
	Gender  Func
	Age     Func
}

// DefaultSet returns the stock extractors.
func DefaultSet() Set {
	return Set{
		Date:    Date,
		Time:    Time,
		Service: Service,
		Phone:   Phone,
		Name:    Name,
		Gender:  Gender,
		Age:     Age,
	}
}

// BookingFields is the result of scanning one message for booking details.
// Empty strings mean the field was not found.
type BookingFields struct {
	Name    string
	Phone   string
	Gender  string
	Age     string
	Service string
	Date    string
	Time    string
}

// ProfileFields is the result of scanning one message for styling-profile details.
type ProfileFields struct {
	FaceShape string
	SkinTone  string
	Gender    string
	Age       string
}

// Complete reports whether all four profile fields were found.
func (p ProfileFields) Complete() bool {
	return p.FaceShape != "" && p.SkinTone != "" && p.Gender != "" && p.Age != ""
}

// Booking runs every booking-field extractor over text.
func (s Set) Booking(text string) BookingFields {
	s = s.withDefaults()
	return BookingFields{
		Name:    value(s.Name, text),
		Phone:   value(s.Phone, text),
		Gender:  value(s.Gender, text),
		Age:     value(s.Age, text),
		Service: value(s.Service, text),
		Date:    value(s.Date, text),
		Time:    value(s.Time, text),
	}
}

// Profile extracts face shape and skin tone through v, plus gender and age.
func (s Set) Profile(text string, v *Vocabulary) ProfileFields {
	s = s.withDefaults()
	if v == nil {
		v = ContinuationVocabulary
	}
	return ProfileFields{
		FaceShape: value(v.FaceShape, text),
		SkinTone:  value(v.SkinTone, text),
		Gender:    value(s.Gender, text),
		Age:       value(s.Age, text),
	}
}

func (s Set) withDefaults() Set {
	d := DefaultSet()
	if s.Date == nil {
		s.Date = d.Date
	}
	if s.Time == nil {
		s.Time = d.Time
	}
	if s.Service == nil {
		s.Service = d.Service
	}
	if s.Phone == nil {
		s.Phone = d.Phone
	}
	if s.Name == nil {
		s.Name = d.Name
	}
	if s.Gender == nil {
		s.Gender = d.Gender
	}
	if s.Age == nil {
		s.Age = d.Age
	}
	return s
}

func value(fn Func, text string) string {
	v, ok := fn(text)
	if !ok {
		return ""
	}
	return v
}
