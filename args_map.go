package directory

import (
	"fmt"
	"time"
)

// OptionsFromMap converts a loosely-typed option map into AvailabilityOptions.
//
// Recognized keys:
//   - start_time, end_time: time.Time, *time.Time or an RFC 3339 string (required)
//   - requested_view: FreeBusyView or string in wire or snake_case spelling (required)
//   - routing_type: string
//   - time_zone: TimeZone, *TimeZone or a nested map with bias/standard_time/daylight_time
//
// All three required keys are checked for presence before any value is
// converted, so an absent key always yields *MissingArgumentError.
// Unrecognized keys are copied into Extra and reach the wire arguments
// unchanged. The input map is not modified.
func OptionsFromMap(m map[string]any) (AvailabilityOptions, error) {
	var missing []string
	for _, key := range requiredAvailabilityKeys {
		if v, ok := m[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return AvailabilityOptions{}, &MissingArgumentError{Missing: missing}
	}

	var opts AvailabilityOptions
	var err error
	if opts.StartTime, err = timeValue(OptStartTime, m[OptStartTime]); err != nil {
		return AvailabilityOptions{}, err
	}
	if opts.EndTime, err = timeValue(OptEndTime, m[OptEndTime]); err != nil {
		return AvailabilityOptions{}, err
	}
	if opts.RequestedView, err = viewValue(m[OptRequestedView]); err != nil {
		return AvailabilityOptions{}, err
	}

	if v, ok := m[OptRoutingType]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return AvailabilityOptions{}, &InvalidArgumentError{Key: OptRoutingType, Reason: fmt.Sprintf("want string, got %T", v)}
		}
		opts.RoutingType = s
	}

	if v, ok := m[OptTimeZone]; ok && v != nil {
		tz, err := timeZoneValue(v)
		if err != nil {
			return AvailabilityOptions{}, err
		}
		opts.TimeZone = tz
	}

	for k, v := range m {
		switch k {
		case OptStartTime, OptEndTime, OptRequestedView, OptRoutingType, OptTimeZone:
			continue
		}
		if opts.Extra == nil {
			opts.Extra = make(map[string]any)
		}
		opts.Extra[k] = v
	}
	return opts, nil
}

func timeValue(key string, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, &InvalidArgumentError{Key: key, Reason: "nil time"}
		}
		return *t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, &InvalidArgumentError{Key: key, Reason: err.Error()}
		}
		return parsed, nil
	default:
		return time.Time{}, &InvalidArgumentError{Key: key, Reason: fmt.Sprintf("want time, got %T", v)}
	}
}

func viewValue(v any) (FreeBusyView, error) {
	var s string
	switch x := v.(type) {
	case FreeBusyView:
		s = string(x)
	case string:
		s = x
	default:
		return "", &InvalidArgumentError{Key: OptRequestedView, Reason: fmt.Sprintf("want string, got %T", v)}
	}
	view, ok := ParseFreeBusyView(s)
	if !ok {
		return "", &InvalidArgumentError{Key: OptRequestedView, Reason: fmt.Sprintf("unknown view %q", s)}
	}
	return view, nil
}

func timeZoneValue(v any) (*TimeZone, error) {
	switch x := v.(type) {
	case TimeZone:
		return x.Clone(), nil
	case *TimeZone:
		return x.Clone(), nil
	case map[string]any:
		tz := &TimeZone{}
		bias, err := intValue(x, "bias")
		if err != nil {
			return nil, err
		}
		tz.Bias = bias
		if tz.StandardTime, err = timeChangeValue(x, "standard_time"); err != nil {
			return nil, err
		}
		if tz.DaylightTime, err = timeChangeValue(x, "daylight_time"); err != nil {
			return nil, err
		}
		return tz, nil
	default:
		return nil, &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func timeChangeValue(m map[string]any, key string) (*TimeChange, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	sub, ok := raw.(map[string]any)
	if !ok {
		return nil, &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("%s: want map, got %T", key, raw)}
	}

	tc := &TimeChange{}
	var err error
	if tc.Bias, err = intValue(sub, "bias"); err != nil {
		return nil, err
	}
	if tc.DayOrder, err = intValue(sub, "day_order"); err != nil {
		return nil, err
	}
	if tc.Month, err = intValue(sub, "month"); err != nil {
		return nil, err
	}
	if tc.Time, err = stringValue(sub, "time"); err != nil {
		return nil, err
	}
	if tc.DayOfWeek, err = stringValue(sub, "day_of_week"); err != nil {
		return nil, err
	}
	return tc, nil
}

// intValue reads an integer that may have been decoded as any numeric type.
func intValue(m map[string]any, key string) (int, error) {
	switch n := m[key].(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("%s: want number, got %T", key, n)}
	}
}

func stringValue(m map[string]any, key string) (string, error) {
	switch s := m[key].(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("%s: want string, got %T", key, s)}
	}
}
