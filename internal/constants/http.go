package constants

const (
	APIFieldRequestID = "request_id"
)

const (
	ContentTypeJSON        = "application/json"
	ContentTypeProblemJSON = "application/problem+json"
	ContentTypeCSV         = "text/csv"
	ContentTypeTextUTF8    = "text/plain; charset=utf-8"
)

const (
	HeaderAccept                    = "Accept"
	HeaderAuthorization             = "Authorization"
	HeaderContentDisposition        = "Content-Disposition"
	HeaderContentLength             = "Content-Length"
	HeaderContentType               = "Content-Type"
	HeaderOrigin                    = "Origin"
	HeaderXAPIKey                   = "X-API-Key"
	HeaderXRequestID                = "X-Request-ID"
	HeaderXRequestedWith            = "X-Requested-With"
	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
)
