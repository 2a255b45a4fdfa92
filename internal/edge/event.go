package edge

// Event is a CloudFront Lambda@Edge origin-request event. Only the fields
// the redirect handler reads are modelled.
type Event struct {
	Records []Record `json:"Records"`
}

type Record struct {
	CF CloudFront `json:"cf"`
}

type CloudFront struct {
	Config  Config  `json:"config"`
	Request Request `json:"request"`
}

type Config struct {
	DistributionID string `json:"distributionId"`
	EventType      string `json:"eventType"`
	RequestID      string `json:"requestId"`
}

type Request struct {
	ClientIP    string  `json:"clientIp"`
	Method      string  `json:"method"`
	URI         string  `json:"uri"`
	Querystring string  `json:"querystring"`
	Headers     Headers `json:"headers"`
}

// Headers uses the CloudFront layout: lowercase names mapping to a list of
// {key, value} pairs where key keeps the original casing.
type Headers map[string][]Header

type Header struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Get returns the first value of the header with the given lowercase name.
func (h Headers) Get(name string) string {
	vs := h[name]
	if len(vs) == 0 {
		return ""
	}
	return vs[0].Value
}

// Response is a generated response returned to CloudFront instead of
// forwarding the request to the origin.
type Response struct {
	Status            string  `json:"status"`
	StatusDescription string  `json:"statusDescription"`
	Headers           Headers `json:"headers,omitempty"`
	Body              string  `json:"body,omitempty"`
}
