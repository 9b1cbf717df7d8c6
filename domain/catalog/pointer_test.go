package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    string
		wantErr bool
	}{
		{name: "ipfs.io gateway", uri: "https://ipfs.io/ipfs/QmAbc", want: "QmAbc"},
		{name: "gateway with path", uri: "https://ipfs.io/ipfs/QmAbc/1.json", want: "QmAbc/1.json"},
		{name: "pinata gateway", uri: "https://gateway.pinata.cloud/ipfs/QmPin", want: "QmPin"},
		{name: "dedicated pinata", uri: "https://punks.mypinata.cloud/ipfs/QmDed", want: "QmDed"},
		{name: "ipfs scheme", uri: "ipfs://QmScheme", want: "QmScheme"},
		{name: "foundation bug", uri: "ipfs://ipfs/QmFnd", want: "QmFnd"},
		{name: "bare hash", uri: "QmBare", want: "QmBare"},
		{name: "gateway without hash", uri: "https://ipfs.io/ipfs/", wantErr: true},
		{name: "other host", uri: "https://example.com/meta.json", wantErr: true},
		{name: "data uri", uri: "data:application/json;base64,e30=", wantErr: true},
		{name: "empty", uri: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContentHash(tt.uri)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedPointer)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
