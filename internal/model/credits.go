package model

// AllowedCredits is the closed set of credit values any catalog uses.
var AllowedCredits = []float64{
	0, 0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0, 5.5, 6.0, 9.0, 12.0, 15.0,
}

var allowedCreditSet = func() map[float64]struct{} {
	m := make(map[float64]struct{}, len(AllowedCredits))
	for _, c := range AllowedCredits {
		m[c] = struct{}{}
	}
	return m
}()

// ValidateCredits rejects anything outside AllowedCredits, including close
// neighbours such as 2.25.
func ValidateCredits(c float64) error {
	if _, ok := allowedCreditSet[c]; !ok {
		return outOfRange("credits", c)
	}
	return nil
}
