package errors

// Code represents an error code with its scope and message
type Code struct {
	Code    int    // Error code
	Fatal   bool   // Fatal errors abort the run, others only skip the current file
	Message string // Error message
}

// Error codes
const (
	// Success
	Success = 0

	// Run level errors (1000-1999)
	ErrInternal      = 1000
	ErrInvalidConfig = 1001
	ErrOutput        = 1002
	ErrUpload        = 1003
	ErrInputDir      = 1004

	// File level errors (2000-2999)
	ErrDecode          = 2000
	ErrIO              = 2001
	ErrUnsupportedFile = 2002
	ErrProcessing      = 2003
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, false, "Success"},

	ErrInternal:      {ErrInternal, true, "Internal error"},
	ErrInvalidConfig: {ErrInvalidConfig, true, "Invalid configuration"},
	ErrOutput:        {ErrOutput, true, "Failed to write output table"},
	ErrUpload:        {ErrUpload, true, "Failed to upload output table"},
	ErrInputDir:      {ErrInputDir, true, "Failed to read input directory"},

	ErrDecode:          {ErrDecode, false, "File is not valid UTF-8 text"},
	ErrIO:              {ErrIO, false, "Failed to read file"},
	ErrUnsupportedFile: {ErrUnsupportedFile, false, "Unsupported file type"},
	ErrProcessing:      {ErrProcessing, false, "Failed to process file"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternal]
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsFatal checks if the code aborts the whole run
func IsFatal(code int) bool {
	return GetCode(code).Fatal
}
