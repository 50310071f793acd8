package session

import "fmt"

// Step is the pending input of a conversation. The zero value means no flow is active.
type Step uint8

const (
	StepNone Step = iota

	// job application
	StepChoosingVacancy
	StepWritingName
	StepWritingAge
	StepWritingPhone
	StepChoosingSubject
	StepWritingExperience
	StepWritingWorkplace
	StepUploadingPhoto
	StepUploadingCV

	// support ticket
	StepSupportCategory
	StepSupportQuestion
	StepSupportPhone

	// course lead
	StepCourseChoice
	StepCourseTariff
	StepCoursePhone

	stepCount
)

// Flow names.
const (
	FlowHR      = "hr"
	FlowSupport = "support"
	FlowCourses = "courses"
)

var stepNames = [stepCount]string{
	StepNone:              "none",
	StepChoosingVacancy:   "choosing_vacancy",
	StepWritingName:       "writing_name",
	StepWritingAge:        "writing_age",
	StepWritingPhone:      "writing_phone",
	StepChoosingSubject:   "choosing_subject",
	StepWritingExperience: "writing_experience",
	StepWritingWorkplace:  "writing_workplace",
	StepUploadingPhoto:    "uploading_photo",
	StepUploadingCV:       "uploading_cv",
	StepSupportCategory:   "support_category",
	StepSupportQuestion:   "support_question",
	StepSupportPhone:      "support_phone",
	StepCourseChoice:      "course_choice",
	StepCourseTariff:      "course_tariff",
	StepCoursePhone:       "course_phone",
}

func (s Step) String() string {
	if s < stepCount {
		return stepNames[s]
	}
	return fmt.Sprintf("step(%d)", uint8(s))
}

// Valid reports whether s is one of the declared steps.
func (s Step) Valid() bool { return s < stepCount }

// Flow returns the flow owning the step, or "" for StepNone.
func (s Step) Flow() string {
	switch {
	case s >= StepChoosingVacancy && s <= StepUploadingCV:
		return FlowHR
	case s >= StepSupportCategory && s <= StepSupportPhone:
		return FlowSupport
	case s >= StepCourseChoice && s <= StepCoursePhone:
		return FlowCourses
	}
	return ""
}

// MarshalText encodes the step by name so persisted sessions survive reordering.
func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("session: invalid step %d", uint8(s))
	}
	return []byte(stepNames[s]), nil
}

// UnmarshalText decodes a step name.
func (s *Step) UnmarshalText(b []byte) error {
	name := string(b)
	for i, n := range stepNames {
		if n == name {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("session: unknown step %q", name)
}
