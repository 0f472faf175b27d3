package canonical

// keySeparator delimits key segments. Canonicalized text can never contain it.
const keySeparator = "\x01"

// StrictKey identifies a variant by canonical color plus the value-only
// property fingerprint. It is the primary identity used for matching and the
// per-product uniqueness key.
func (c *Canonicalizer) StrictKey(color string, props any) string {
	return keySeparator + c.Color(color) + keySeparator + c.Fingerprint(props)
}

// StrictKeyFromFingerprint rebuilds a strict key from an already-stored
// fingerprint, bypassing recomputation.
func (c *Canonicalizer) StrictKeyFromFingerprint(color, fingerprint string) string {
	return keySeparator + c.Color(color) + keySeparator + fingerprint
}

// LooseKey identifies a variant by canonical color plus the full canonical
// property encoding. It is a matching fallback, not a uniqueness key.
func (c *Canonicalizer) LooseKey(color string, props any) string {
	return keySeparator + c.Color(color) + keySeparator + c.Properties(props)
}
