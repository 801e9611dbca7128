package hscrm

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fivetwenty-io/hscrm/internal/constants"
)

// Watermark is a lower bound used to fetch records newer than a prior
// point. The zero value means "everything, by last-modified date".
type Watermark struct {
	Property string
	Value    interface{}
}

// DefaultWatermark returns the full-scan watermark: last-modified after the
// epoch.
func DefaultWatermark() Watermark {
	return Watermark{Property: constants.PropertyLastModified}
}

// Resolve fills in the default property when none was given.
func (w Watermark) Resolve() Watermark {
	if w.Property == "" {
		w.Property = constants.PropertyLastModified
	}

	return w
}

// IsLastModified reports whether the watermark is on the last-modified
// timestamp and therefore compared as epoch milliseconds.
func (w Watermark) IsLastModified() bool {
	return w.Resolve().Property == constants.PropertyLastModified
}

// EpochMillis converts a timestamp to milliseconds since the epoch,
// dropping sub-millisecond precision. A nil time converts to 0.
func EpochMillis(t *time.Time) int64 {
	if t == nil || t.IsZero() {
		return 0
	}

	return t.Unix()*1000 + int64(t.Nanosecond()/int(time.Millisecond))
}

// NormalizeWatermarkValue applies the value normalization for the filter
// property. Last-modified values become epoch milliseconds; anything else is
// returned unchanged.
func NormalizeWatermarkValue(property string, value interface{}) interface{} {
	if property != constants.PropertyLastModified {
		return value
	}

	switch typed := value.(type) {
	case nil:
		return int64(0)
	case time.Time:
		return EpochMillis(&typed)
	case *time.Time:
		return EpochMillis(typed)
	case string:
		if typed == "" {
			return int64(0)
		}

		parsed, err := time.Parse(time.RFC3339Nano, typed)
		if err != nil {
			return typed
		}

		return EpochMillis(&parsed)
	default:
		return value
	}
}

// WatermarkFilter builds the greater-than filter for a watermark.
func WatermarkFilter(w Watermark) Filter {
	w = w.Resolve()

	return Filter{
		PropertyName: w.Property,
		Operator:     constants.OperatorGT,
		Value:        NormalizeWatermarkValue(w.Property, w.Value),
	}
}

// EqualFilter builds an equality filter.
func EqualFilter(property string, value interface{}) Filter {
	return Filter{
		PropertyName: property,
		Operator:     constants.OperatorEQ,
		Value:        value,
	}
}

// WatermarkFilterGroup builds the single filter group for a watermark walk.
// When pipelineID is not empty an equality filter on pipelineProperty is
// appended.
func WatermarkFilterGroup(w Watermark, pipelineProperty, pipelineID string) FilterGroup {
	filters := []Filter{WatermarkFilter(w)}

	if pipelineID != "" && pipelineProperty != "" {
		filters = append(filters, EqualFilter(pipelineProperty, pipelineID))
	}

	return FilterGroup{Filters: filters}
}

// WatermarkSort sorts ascending on the watermark property so that
// successive pages never move the watermark backwards.
func WatermarkSort(w Watermark) []Sort {
	return []Sort{{PropertyName: w.Resolve().Property, Direction: constants.SortAscending}}
}

// FilterGroups wraps non-empty groups for a search request. Groups without
// filters are dropped so an empty group is never sent.
func FilterGroups(groups ...FilterGroup) []FilterGroup {
	var result []FilterGroup

	for _, group := range groups {
		if len(group.Filters) > 0 {
			result = append(result, group)
		}
	}

	return result
}

func formatValue(value interface{}) string {
	switch typed := value.(type) {
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int:
		return strconv.Itoa(typed)
	case bool:
		return strconv.FormatBool(typed)
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
