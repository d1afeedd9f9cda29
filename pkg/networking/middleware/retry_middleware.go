package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/vaultview/vaultview/pkg/configuration"
)

const defaultRetryCount uint = 1 // retries are disabled (=1 attempt) unless raised via configuration
const defaultRetryAfterSeconds = 5
const maxRetryAfter = 10 * time.Minute
const retryCountHeaderKey = "Vaultview-Request-Attempt-Count"

// response status codes that warrant a retry
var statusCodesToRetryLUT = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusRequestTimeout:      true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

var errRetryNecessary = errors.New("retry with backoff")
var errRetryAfterTooFar = errors.New("retry-after is too much in the future")

type RetryMiddleware struct {
	nextRoundTripper http.RoundTripper
	config           configuration.Configuration
	logger           *zerolog.Logger
}

func NewRetryMiddleware(config configuration.Configuration, logger *zerolog.Logger, roundTripper http.RoundTripper) *RetryMiddleware {
	return &RetryMiddleware{
		nextRoundTripper: roundTripper,
		config:           config,
		logger:           logger,
	}
}

func (rm *RetryMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	var localBodyBuffer []byte
	var maxAttempts = defaultRetryCount
	var retryAfterSeconds = defaultRetryAfterSeconds
	var actualAttempts = 0

	if tmp := (uint)(rm.config.GetInt(configuration.RETRY_ATTEMPTS)); tmp > 0 {
		maxAttempts = tmp
	}

	if tmp := rm.config.GetInt(configuration.RETRY_AFTER_SECONDS); tmp > 0 {
		retryAfterSeconds = tmp
	}

	// buffer the body locally so it can be replayed on each attempt
	if req.Body != nil && maxAttempts > 1 {
		var localBufferError error
		localBodyBuffer, localBufferError = io.ReadAll(req.Body)
		closeError := req.Body.Close()

		if localBufferError != nil {
			return nil, localBufferError
		}
		if closeError != nil {
			return nil, closeError
		}

		req.Body = io.NopCloser(bytes.NewBuffer(localBodyBuffer))
	}

	op := func() (*http.Response, error) {
		actualAttempts++

		localRequest := *req
		if len(localBodyBuffer) > 0 {
			localRequest.Body = io.NopCloser(bytes.NewBuffer(localBodyBuffer))
		}

		response, err := rm.nextRoundTripper.RoundTrip(&localRequest)

		if response != nil && response.Header != nil && actualAttempts > 1 {
			response.Header.Set(retryCountHeaderKey, fmt.Sprintf("%d", actualAttempts))
		}

		// transport errors are not retried
		if err != nil {
			return response, backoff.Permanent(err)
		}

		if retryError := shouldRetry(response); retryError != nil {
			rm.logger.Debug().Msgf("Retrying request, reason: %v", retryError)
			return response, retryError
		}

		return response, nil
	}

	backoffMethod := backoff.NewExponentialBackOff()
	backoffMethod.InitialInterval = time.Duration(retryAfterSeconds) * time.Second
	finalResponse, finalError := backoff.Retry(req.Context(), op, backoff.WithBackOff(backoffMethod), backoff.WithMaxTries(maxAttempts))

	// when retries are exhausted the last response is returned as-is, not the internal error marker
	if errors.Is(finalError, errRetryNecessary) {
		rm.logger.Warn().Msgf("Retry ultimately failed after %d attempts", maxAttempts)
		finalError = nil
	}

	return finalResponse, finalError
}

func shouldRetry(response *http.Response) error {
	if statusCodesToRetryLUT[response.StatusCode] {
		fixRetryDelay := time.Duration(0)

		if headerRetryAfterValue := response.Header.Get("Retry-After"); len(headerRetryAfterValue) > 0 {
			fixRetryDelay = parseRetryAfterHeader(headerRetryAfterValue)
		}

		// rather fail permanently than block for an unreasonable time
		if fixRetryDelay > maxRetryAfter {
			return backoff.Permanent(errRetryAfterTooFar)
		}

		if fixRetryDelay > 0 {
			return &backoff.RetryAfterError{Duration: fixRetryDelay}
		}

		return errRetryNecessary
	}

	return nil
}

func parseRetryAfterHeader(headerRetryAfterValue string) time.Duration {
	// Retry-After: 1230
	if tmp, err := strconv.ParseInt(headerRetryAfterValue, 10, 64); err == nil {
		return time.Duration(tmp) * time.Second
	}

	// Retry-After: Fri, 31 Dec 1999 23:59:59 GMT
	if tmp, err := time.Parse(time.RFC1123, headerRetryAfterValue); err == nil {
		if until := time.Until(tmp); until > 0 {
			return until
		}
	}

	return 0
}
