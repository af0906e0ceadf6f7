package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "J.D. Martinez", expected: "jdmartinez"},
		{name: "JD  Martinez", expected: "jdmartinez"},
		{name: "Travis d'Arnaud", expected: "travisdarnaud"},
		{name: " Jung-Ho Kang\n", expected: "junghokang"},
		{name: "Martinez, J.D.", expected: "martinezjd"},
		{name: "", expected: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeName(test.name), test.name)
	}
}
