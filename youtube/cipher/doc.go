/*
Package cipher recovers and applies YouTube signature ciphers.

A player script hides the signature transformation in two places: a helper
object whose members each reverse, slice, splice or swap a character array,
and a small decipher function that splits the signature, calls the helpers
with literal arguments, and joins the result. The package recognizes both by
the shape of their bodies and turns them into a Cipher, an ordered list of
Operations that can be applied without executing any JavaScript.

# Recognition

The default PatternRecognizer looks for:

	var Xy={Rk:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b]=c},
	$q:function(a){a.reverse()},
	ab:function(a,b){return a.slice(b)},
	zZ:function(a,b){a.splice(0,b)}};

	function(a){a=a.split("");Xy.Rk(a,3);Xy.$q(a,45);a=Xy.ab(a,2);return a.join("")}

Member names are minified and differ between deployments, so only the bodies
are matched. Calls to members with an unknown body are skipped.

When either fragment is missing, Extract returns an *Error with code
ACTIONS_NOT_FOUND or DECIPHER_FUNCTION_NOT_FOUND. These mean the upstream
format changed; retrying will not help. An empty Cipher is returned without
error and behaves as the identity transform.

# Usage

	x, err := cipher.Extract(script)
	if err != nil {
		if cipher.IsFormat(err) {
			// the recognizer needs updating
		}
		return err
	}
	sig := x.Cipher.Apply(token)

# Verification

OttoVerifier and GojaVerifier execute the located fragments in a JavaScript
engine on a probe token and compare the output with Cipher.Apply. They are a
diagnostic; a mismatch does not change the extracted program.

# Error Codes

  - SCRIPT_DOWNLOAD_FAILED: transport failure while fetching the script
  - SCRIPT_BAD_STATUS: script request returned a non-200 status
  - ACTIONS_NOT_FOUND: helper object not found
  - DECIPHER_FUNCTION_NOT_FOUND: decipher function not found
  - INVALID_URL: playback or manifest URL could not be parsed
  - VERIFY_FAILED: the verification engine could not run the fragments

# Thread Safety

A Cipher is immutable and Apply allocates its own buffer, so a single Cipher
may be used from any number of goroutines.
*/
package cipher
