package qif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentKinds(t *testing.T) {
	data := "!Type:Cat\nNFood\n^\nNRent\n^\n" +
		"!Type:Class\nNWork\n^\n" +
		"!Type:Security\nNAcme\nSACM\n^\n" +
		"!Type:Memorized\nKC\nPShop\n^\n" +
		"!Type:Invst\nNBuy\n^\n" +
		"!Type:Bank\nD1/1/2000\n^\nD1/2/2000\n^\n"

	chunks, err := Segment(data)
	require.NoError(t, err)

	var kinds []Kind
	for _, c := range chunks {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []Kind{
		KindCategory, KindCategory,
		KindClass,
		KindSecurity,
		KindMemorized,
		KindInvestment,
		KindTransaction, KindTransaction,
	}, kinds)

	assert.Equal(t, []string{"NFood"}, chunks[0].Lines)
	assert.Equal(t, "", chunks[0].Header)
	assert.Equal(t, HeaderMemorized, chunks[4].Header)
	assert.Equal(t, HeaderInvestment, chunks[5].Header)
	assert.Equal(t, HeaderBank, chunks[6].Header)
	assert.Equal(t, HeaderBank, chunks[7].Header, "headerless chunk keeps the header in force")
}

func TestSegmentAccountOverride(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "bank", header: HeaderBank},
		{name: "credit_card", header: HeaderCreditCard},
		{name: "investment", header: HeaderInvestment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Segment(tt.header + "\n!Account\nNChecking\nTBank\n^\n")
			require.NoError(t, err)
			require.Len(t, chunks, 1)
			assert.Equal(t, KindAccount, chunks[0].Kind)
			assert.Equal(t, []string{"NChecking", "TBank"}, chunks[0].Lines)
		})
	}
}

func TestSegmentInheritsAfterAccount(t *testing.T) {
	data := "!Type:Bank\nD1/1/2000\n^\n!Account\nNSavings\n^\nNOther\n^\n"
	chunks, err := Segment(data)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, KindTransaction, chunks[0].Kind)
	assert.Equal(t, KindAccount, chunks[1].Kind)
	assert.Equal(t, KindAccount, chunks[2].Kind)
}

func TestSegmentOptions(t *testing.T) {
	data := "!Option:AutoSwitch\n!Account\nNChecking\n^\nNSavings\n^\n!Clear:AutoSwitch\n^\n!Option:AllXfr\n!Account\nNBroker\n^\n"
	chunks, err := Segment(data)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.True(t, chunks[0].AutoSwitch)
	assert.True(t, chunks[1].AutoSwitch)
	assert.False(t, chunks[2].AutoSwitch)
	for _, c := range chunks {
		assert.Equal(t, KindAccount, c.Kind)
	}
}

func TestSegmentNormalizesInput(t *testing.T) {
	chunks, err := Segment("!Type:Cat\r\nNFood\r\n^\r\nNRent\r\n^")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"NFood"}, chunks[0].Lines)
	assert.Equal(t, []string{"NRent"}, chunks[1].Lines)
}

func TestSegmentSkipsEmptyChunks(t *testing.T) {
	chunks, err := Segment("!Type:Class\nNA\n^\n\n^\n  \n^\nNB\n^\n")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"NB"}, chunks[1].Lines)
}

func TestSegmentErrors(t *testing.T) {
	t.Run("empty_input", func(t *testing.T) {
		_, err := Segment("")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("unrecognized_header", func(t *testing.T) {
		_, err := Segment("!Type:Cat\nNFood\n^\n!Type:Unknown\nNx\n^\n")
		require.ErrorIs(t, err, ErrUnrecognizedHeader)
		assert.Contains(t, err.Error(), "!Type:Unknown")

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 1, pe.Chunk)
		assert.Equal(t, "!Type:Unknown", pe.Line)
	})

	t.Run("headerless_first_chunk", func(t *testing.T) {
		_, err := Segment("NFood\n^\n")
		require.ErrorIs(t, err, ErrInconsistentChunkState)

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 0, pe.Chunk)
		assert.Equal(t, "NFood", pe.Line)
	})
}
