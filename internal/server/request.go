package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxBodySize caps the bytes read from a POST body.
const DefaultMaxBodySize = 10 << 20

var (
	errBodyTooLarge       = errors.New("request body is too large")
	errUnsupportedContent = errors.New("unsupported content type")
)

// Request is a GraphQL request as sent by clients over HTTP or websocket.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
	Extensions    Extensions             `json:"extensions"`
}

// Extensions holds the request extensions the server understands.
type Extensions struct {
	PersistedQuery *PersistedQuery `json:"persistedQuery,omitempty"`
}

// PersistedQuery is the automatic persisted query extension.
type PersistedQuery struct {
	Version int    `json:"version"`
	Hash    string `json:"sha256Hash"`
}

// getOneValue returns an empty string for a missing key and an error when
// the key is repeated.
func getOneValue(values url.Values, key string) (string, error) {
	v := values[key]
	switch len(v) {
	case 0:
		return "", nil
	case 1:
		return v[0], nil
	default:
		return "", fmt.Errorf(`multiple values are provided to "%s", but only one expected`, key)
	}
}

func parseValues(values url.Values) (*Request, error) {
	var (
		req Request
		err error
	)
	if req.Query, err = getOneValue(values, "query"); err != nil {
		return nil, err
	}
	if req.OperationName, err = getOneValue(values, "operationName"); err != nil {
		return nil, err
	}

	variables, err := getOneValue(values, "variables")
	if err != nil {
		return nil, err
	}
	if variables != "" {
		if err := json.UnmarshalFromString(variables, &req.Variables); err != nil {
			return nil, fmt.Errorf("decode variables: %w", err)
		}
	}

	extensions, err := getOneValue(values, "extensions")
	if err != nil {
		return nil, err
	}
	if extensions != "" {
		if err := json.UnmarshalFromString(extensions, &req.Extensions); err != nil {
			return nil, fmt.Errorf("decode extensions: %w", err)
		}
	}
	return &req, nil
}

// parseRequest decodes a GraphQL request from a GET query string or a POST
// body in JSON, application/graphql or form encoding.
func parseRequest(r *http.Request, maxBodySize int64) (*Request, error) {
	if r.Method == http.MethodGet {
		return parseValues(r.URL.Query())
	}

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > maxBodySize {
		return nil, errBodyTooLarge
	}

	switch contentType {
	case "application/graphql":
		return &Request{Query: string(body)}, nil

	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		return parseValues(values)

	case "", "application/json":
		var req Request
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		return &req, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedContent, contentType)
	}
}
