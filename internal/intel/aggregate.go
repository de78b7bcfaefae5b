package intel

// MergeTurn unions the deterministic extractor's record with the untrusted
// candidate. Every extracted value survives; the candidate only adds.
func MergeTurn(extracted Record, candidate Candidate) Record {
	out := extracted.Clone()
	clean := candidate.Sanitize()
	for _, c := range Categories {
		out.Add(c, clean[c]...)
	}
	return out
}

// Accumulate unions a turn record into the session record. Neither input is
// modified and applying the same turn twice changes nothing.
func Accumulate(acc, turn Record) Record {
	out := acc.Clone()
	for _, c := range Categories {
		out.Add(c, turn[c]...)
	}
	return out
}
