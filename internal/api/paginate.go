package api

import (
	"fmt"
	"reflect"

	"github.com/phrazzld/envelope/internal/apierror"
)

// Paginate slices items, which must be a slice or array, into the page
// pageNumber of size pageSize. The result is the cursorless page shape that
// the v2 envelope expands into next/previous links. A page past the end is
// empty; page numbers below 1 are not found.
func Paginate(items any, pageSize, pageNumber int) (map[string]any, error) {
	if pageSize <= 0 {
		return nil, apierror.ErrInvalidPageSize
	}
	if pageNumber < 1 {
		return nil, apierror.NotFound("Invalid page.")
	}

	v := reflect.ValueOf(items)
	if items == nil {
		v = reflect.ValueOf([]any{})
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("paginate: expected a slice, got %T", items)
	}

	count := v.Len()
	lo := count
	if pageNumber-1 < count/pageSize+1 {
		lo = min((pageNumber-1)*pageSize, count)
	}
	hi := lo + min(count-lo, pageSize)

	result := make([]any, 0, hi-lo)
	for i := lo; i < hi; i++ {
		result = append(result, v.Index(i).Interface())
	}

	return map[string]any{
		"count":       count,
		"page_size":   pageSize,
		"page_number": pageNumber,
		"result":      result,
	}, nil
}
