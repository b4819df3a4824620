package verification

// Kind тип результата проверки.
type Kind string

const (
	KindConfirmed   Kind = "confirmed"
	KindRateLimited Kind = "rate_limited"
	KindFailed      Kind = "failed"
)

// CodeInternal код для ошибок транспорта и нераспознанных ответов.
const CodeInternal = "internal_error"

// DefaultRetryAfter используется, если сервис вернул 429 без задержки.
const DefaultRetryAfter = 60

// Result данные, подтвержденные сервисом проверки.
type Result struct {
	Verified      bool               `json:"verified"`
	Steps         int                `json:"steps,omitempty"`
	ToleranceUsed *float64           `json:"tolerance_used,omitempty"`
	Extracted     map[string]float64 `json:"extracted,omitempty"`
	Notes         string             `json:"notes,omitempty"`
}

// Outcome нормализованный результат вызова сервиса проверки.
type Outcome struct {
	Kind        Kind    `json:"outcome"`
	Data        *Result `json:"data,omitempty"`
	RetryAfter  int     `json:"retry_after,omitempty"`
	Code        string  `json:"code,omitempty"`
	Message     string  `json:"message,omitempty"`
	ShouldRetry bool    `json:"should_retry"`
}

func Confirmed(data Result) Outcome {
	return Outcome{Kind: KindConfirmed, Data: &data}
}

func RateLimited(retryAfter int) Outcome {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}
	return Outcome{Kind: KindRateLimited, RetryAfter: retryAfter}
}

func Failed(code, message string, shouldRetry bool) Outcome {
	return Outcome{Kind: KindFailed, Code: code, Message: message, ShouldRetry: shouldRetry}
}

func (o Outcome) IsConfirmed() bool {
	return o.Kind == KindConfirmed
}

func (o Outcome) IsRateLimited() bool {
	return o.Kind == KindRateLimited
}
