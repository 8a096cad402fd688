package envelope

import (
	"math"
	"net/http"
	"strconv"

	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/spf13/cast"
)

// RequestBase returns scheme://host for r. The scheme honours
// X-Forwarded-Proto set by a proxy.
func RequestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

// RequestPath returns scheme://host/path for r, without the query string.
func RequestPath(r *http.Request) string {
	return RequestBase(r) + r.URL.Path
}

// pageURLs derives next and previous page links for a cursorless page.
// Values may be any integer-like type. A page number of zero renders as nil.
func pageURLs(base string, count, pageSize, pageNumber any) (next, previous any, err error) {
	c, err := cast.ToIntE(count)
	if err != nil {
		return nil, nil, apierror.ErrInvalidPagination
	}
	size, err := cast.ToIntE(pageSize)
	if err != nil {
		return nil, nil, apierror.ErrInvalidPagination
	}
	page, err := cast.ToIntE(pageNumber)
	if err != nil {
		return nil, nil, apierror.ErrInvalidPagination
	}
	if size <= 0 {
		return nil, nil, apierror.ErrInvalidPageSize
	}

	firstPage := 0
	if c != 0 {
		firstPage = 1
	}
	lastPage := int(math.Ceil(float64(c) / float64(size)))

	nextPage := 0
	if page < lastPage {
		nextPage = page + 1
	}
	previousPage := page - 1
	if page <= firstPage && firstPage != 0 {
		previousPage = 0
	}

	return pageLink(base, nextPage), pageLink(base, previousPage), nil
}

func pageLink(base string, page int) any {
	if page == 0 {
		return nil
	}
	return base + "?page=" + strconv.Itoa(page)
}
