package shopify

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var pathParamPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// RequestDescriptor is an immutable snapshot of a request: a URI template,
// method, headers, query, JSON body and credentials. Every With method returns
// a new descriptor; maps are copied so snapshots never share state.
type RequestDescriptor struct {
	method      string
	shop        string
	uri         string
	pathParams  map[string]string
	headers     http.Header
	query       url.Values
	body        any
	credentials Credentials
}

// NewRequest returns a descriptor for method and uriTemplate. The template is
// either an absolute URL or a path such as /admin/api/2024-01/products/{id}.json
// resolved against the shop host.
func NewRequest(method, uriTemplate string) RequestDescriptor {
	return RequestDescriptor{method: method, uri: uriTemplate}
}

// WithMethod returns a copy using method.
func (r RequestDescriptor) WithMethod(method string) RequestDescriptor {
	r.method = method
	return r
}

// WithShop returns a copy targeting shop.
func (r RequestDescriptor) WithShop(shop string) RequestDescriptor {
	r.shop = shop
	return r
}

// WithURI returns a copy with a different URI template.
func (r RequestDescriptor) WithURI(uriTemplate string) RequestDescriptor {
	r.uri = uriTemplate
	return r
}

// WithPathParam returns a copy that substitutes {name} with value.
func (r RequestDescriptor) WithPathParam(name, value string) RequestDescriptor {
	r.pathParams = maps.Clone(r.pathParams)
	if r.pathParams == nil {
		r.pathParams = map[string]string{}
	}
	r.pathParams[name] = value
	return r
}

// WithHeader returns a copy with header key set to value.
func (r RequestDescriptor) WithHeader(key, value string) RequestDescriptor {
	r.headers = r.headers.Clone()
	if r.headers == nil {
		r.headers = http.Header{}
	}
	r.headers.Set(key, value)
	return r
}

// WithQuery returns a copy with query parameter key set to value.
func (r RequestDescriptor) WithQuery(key, value string) RequestDescriptor {
	r.query = cloneValues(r.query)
	r.query.Set(key, value)
	return r
}

// WithQueryValues returns a copy with every key of values set, replacing
// existing entries of the same key.
func (r RequestDescriptor) WithQueryValues(values url.Values) RequestDescriptor {
	r.query = cloneValues(r.query)
	for k, v := range values {
		r.query[k] = append([]string(nil), v...)
	}
	return r
}

// WithBody returns a copy carrying body, encoded as JSON when sent.
func (r RequestDescriptor) WithBody(body any) RequestDescriptor {
	r.body = body
	return r
}

// WithCredentials returns a copy authenticated by creds.
func (r RequestDescriptor) WithCredentials(creds Credentials) RequestDescriptor {
	r.credentials = creds
	return r
}

// Method returns the HTTP method, GET when unset.
func (r RequestDescriptor) Method() string {
	if r.method == "" {
		return http.MethodGet
	}
	return r.method
}

// Shop returns the target shop as configured.
func (r RequestDescriptor) Shop() string {
	return r.shop
}

// Query returns a copy of the query parameters.
func (r RequestDescriptor) Query() url.Values {
	return cloneValues(r.query)
}

// Header returns a copy of the headers.
func (r RequestDescriptor) Header() http.Header {
	if r.headers == nil {
		return http.Header{}
	}
	return r.headers.Clone()
}

// Body returns the request payload.
func (r RequestDescriptor) Body() any {
	return r.body
}

// Credentials returns the credentials attached to the request.
func (r RequestDescriptor) Credentials() Credentials {
	return r.credentials
}

// Path expands the URI template. Placeholders without a value fail with a
// *MissingParameterError.
func (r RequestDescriptor) Path() (string, error) {
	var missing string
	expanded := pathParamPattern.ReplaceAllStringFunc(r.uri, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := r.pathParams[name]
		if !ok || v == "" {
			if missing == "" {
				missing = name
			}
			return m
		}
		return url.PathEscape(v)
	})
	if missing != "" {
		return "", &MissingParameterError{Parameter: missing}
	}
	return expanded, nil
}

// URL resolves the descriptor against the shop host, or against base when it
// is non-empty. Absolute URI templates are used as-is.
func (r RequestDescriptor) URL(base string) (*url.URL, error) {
	path, err := r.Path()
	if err != nil {
		return nil, err
	}

	var u *url.URL
	switch {
	case strings.Contains(path, "://"):
		u, err = url.Parse(path)
	case base != "":
		u, err = url.Parse(strings.TrimRight(base, "/") + path)
	default:
		if r.shop == "" {
			return nil, &MissingParameterError{Parameter: "shop"}
		}
		host, nerr := NormalizeShop(r.shop)
		if nerr != nil {
			return nil, nerr
		}
		u, err = url.Parse("https://" + host + path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing request url: %w", ErrInvalidInput, err)
	}

	if len(r.query) > 0 {
		q := u.Query()
		for k, v := range r.query {
			q[k] = v
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}
