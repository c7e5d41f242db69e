package types

// DefaultSignatureParam is the query parameter that carries a decoded
// signature when a format does not name one.
const DefaultSignatureParam = "signature"

// Format references a media resource. URL is the base address; Signature,
// when set, is the scrambled token that must be decoded and attached to URL
// under SignatureParam before the resource can be fetched.
type Format struct {
	Itag           int
	URL            string
	Signature      string
	SignatureParam string
	MimeType       string
}

// HasSignature reports whether the format carries a scrambled signature.
func (f Format) HasSignature() bool {
	return f.Signature != ""
}

// SignatureKey returns the query parameter for the decoded signature.
func (f Format) SignatureKey() string {
	if f.SignatureParam == "" {
		return DefaultSignatureParam
	}
	return f.SignatureParam
}
