// Package form validates events before they are stored. The date
// arithmetic in the other packages tolerates bad input; this is the layer that
// refuses it and tells the user why.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"schedcal/internal/model"
)

const (
	MsgRequired   = "필수 정보를 모두 입력해주세요."
	MsgDate       = "날짜 형식이 올바르지 않습니다."
	MsgClock      = "시간 형식이 올바르지 않습니다."
	MsgRepeatType = "반복 유형이 올바르지 않습니다."
	MsgMin        = "값이 허용 범위보다 작습니다."
	MsgStartTime  = "시작 시간은 종료 시간보다 빨라야 합니다."
	MsgEndTime    = "종료 시간은 시작 시간보다 늦어야 합니다."
	MsgRepeatEnd  = "반복 종료일은 일정 날짜 이후여야 합니다."
)

var ErrInvalidEvent = errors.New("invalid event")

// ValidationError maps JSON field paths ("startTime", "repeat.interval") to
// user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidEvent, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidEvent }

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "caldate", func(fl validator.FieldLevel) bool {
		return isDate(fl.Field().String())
	})
	mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
		return isClock(fl.Field().String())
	})
	mustRegister(v, "repeattype", func(fl validator.FieldLevel) bool {
		return model.RepeatType(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("form: register %s: %v", tag, err))
	}
}

func isDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func isClock(s string) bool {
	if !clockRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// Validate checks required fields, formats, the repeat rule and that the
// event ends after it starts. It returns nil or a *ValidationError.
func Validate(ev model.Event) error {
	fields := make(map[string]string)

	if err := validate.Struct(ev); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("form: validate: %w", err)
		}
		for _, fe := range verrs {
			fields[fieldPath(fe)] = message(fe.Tag())
		}
	}

	if _, bad := fields["startTime"]; !bad {
		if _, bad := fields["endTime"]; !bad {
			startErr, endErr := TimeErrors(ev.StartTime, ev.EndTime)
			if startErr != "" {
				fields["startTime"] = startErr
				fields["endTime"] = endErr
			}
		}
	}

	if ev.Repeat.EndDate != "" && isDate(ev.Date) && isDate(ev.Repeat.EndDate) && ev.Repeat.EndDate < ev.Date {
		fields["repeat.endDate"] = MsgRepeatEnd
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// TimeErrors returns the start/end messages shown next to the time inputs
// when start is not strictly before end. Both are empty when the pair is fine
// or either value is missing or malformed.
func TimeErrors(start, end string) (startErr, endErr string) {
	if !isClock(start) || !isClock(end) {
		return "", ""
	}
	// "HH:MM" compares correctly as a string.
	if start >= end {
		return MsgStartTime, MsgEndTime
	}
	return "", ""
}

// fieldPath drops the struct name from the namespace: "Event.repeat.interval"
// becomes "repeat.interval".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(tag string) string {
	switch tag {
	case "required":
		return MsgRequired
	case "caldate":
		return MsgDate
	case "clock":
		return MsgClock
	case "repeattype":
		return MsgRepeatType
	case "min":
		return MsgMin
	default:
		return tag
	}
}
