package scoring_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
)

func TestCompositeCodec_MergeScenario(t *testing.T) {
	codec := scoring.DefaultCompositeCodec()

	a, err := codec.Decode("FIN/2024/001")
	gt.NoError(t, err).Required()
	b, err := codec.Decode("FIN/2024/002")
	gt.NoError(t, err).Required()
	gt.S(t, a.Prefix).Equal(b.Prefix)

	merged, err := codec.Encode(a.Prefix, append(a.Members, b.Members...))
	gt.NoError(t, err).Required()
	gt.S(t, merged).Equal("FIN/2024/001/002")

	decoded, err := codec.Decode(merged)
	gt.NoError(t, err).Required()
	gt.S(t, decoded.Prefix).Equal("FIN/2024")
	gt.V(t, decoded.Members).Equal([]string{"001", "002"})
	gt.V(t, decoded.PlainIDs()).Equal([]string{"FIN/2024/001", "FIN/2024/002"})

	gt.B(t, codec.IsMerged(merged)).True()
	gt.B(t, codec.IsMerged("FIN/2024/001")).False()
}

func TestCompositeCodec_ThreeSegmentPrefix(t *testing.T) {
	codec, err := scoring.NewCompositeCodec(3)
	gt.NoError(t, err).Required()

	id, err := codec.Encode("A/B/C", []string{"001", "002"})
	gt.NoError(t, err).Required()
	gt.S(t, id).Equal("A/B/C/001/002")

	decoded, err := codec.Decode(id)
	gt.NoError(t, err).Required()
	gt.S(t, decoded.Prefix).Equal("A/B/C")
	gt.V(t, decoded.Members).Equal([]string{"001", "002"})
	gt.B(t, decoded.IsMerged()).True()
	gt.B(t, codec.IsMerged("A/B/C/001")).False()
}

func TestCompositeCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		segments int
		prefix   string
		members  []string
	}{
		{2, "FIN/2024", []string{"001"}},
		{2, "OPS/2023", []string{"010", "003", "007"}},
		{1, "HR", []string{"1", "2"}},
		{3, "A/B/C", []string{"001"}},
		{3, "RISK/2025/Q1", []string{"9", "10", "11", "12"}},
	}

	for _, tt := range tests {
		codec, err := scoring.NewCompositeCodec(tt.segments)
		gt.NoError(t, err).Required()

		id, err := codec.Encode(tt.prefix, tt.members)
		gt.NoError(t, err).Required()

		decoded, err := codec.Decode(id)
		gt.NoError(t, err).Required()
		gt.S(t, decoded.Prefix).Equal(tt.prefix)
		gt.V(t, decoded.Members).Equal(tt.members)
		gt.V(t, codec.IsMerged(id)).Equal(len(decoded.Members) > 1)
	}
}

func TestCompositeCodec_Errors(t *testing.T) {
	codec := scoring.DefaultCompositeCodec()

	decodeTests := []string{
		"",
		"FIN",
		"FIN/2024",
		"FIN//001",
		"FIN/2024/001/",
	}
	for _, id := range decodeTests {
		_, err := codec.Decode(id)
		gt.Error(t, err)
		gt.B(t, errors.Is(err, scoring.ErrInvalidInput)).Describef("decode %q", id).True()
		gt.B(t, codec.IsMerged(id)).Describef("is merged %q", id).False()
	}

	_, err := codec.Encode("FIN", []string{"001"})
	gt.Error(t, err)
	_, err = codec.Encode("FIN/2024/001", []string{"002"})
	gt.Error(t, err)
	_, err = codec.Encode("FIN/", []string{"001"})
	gt.Error(t, err)
	_, err = codec.Encode("FIN/2024", nil)
	gt.Error(t, err)
	_, err = codec.Encode("FIN/2024", []string{"001", ""})
	gt.Error(t, err)
	_, err = codec.Encode("FIN/2024", []string{"001/002"})
	gt.Error(t, err)

	_, err = scoring.NewCompositeCodec(0)
	gt.Error(t, err)
}

func TestDefaultCompositeCodec_ThreeSegmentPrefix(t *testing.T) {
	_, err := scoring.DefaultCompositeCodec().Encode("A/B/C", []string{"001", "002"})
	gt.B(t, errors.Is(err, scoring.ErrInvalidInput)).True()

	codec, err := scoring.NewCompositeCodec(3)
	gt.NoError(t, err).Required()
	id, err := codec.Encode("A/B/C", []string{"001", "002"})
	gt.NoError(t, err).Required()
	gt.S(t, id).Equal("A/B/C/001/002")
}

func TestCompositeCodec_IsMergedCountsSeparators(t *testing.T) {
	codec := scoring.DefaultCompositeCodec()
	gt.B(t, codec.IsMerged("FIN/2024/001/002/003")).True()
	gt.B(t, codec.IsMerged("FIN//001/002")).False()
	gt.B(t, codec.IsMerged("not-an-id")).False()
}

func TestCompositeCodec_PlainID(t *testing.T) {
	codec := scoring.DefaultCompositeCodec()
	id, err := codec.PlainID("FIN/2024", "007")
	gt.NoError(t, err)
	gt.S(t, id).Equal("FIN/2024/007")
}

func TestResolveMembers(t *testing.T) {
	codec := scoring.DefaultCompositeCodec()
	decoded, err := codec.Decode("FIN/2024/001/002/003")
	gt.NoError(t, err).Required()

	stored := map[string]*model.RiskReport{
		"FIN/2024/001": {ID: "r-1", CompositeID: "FIN/2024/001"},
		"FIN/2024/003": {ID: "r-3", CompositeID: "FIN/2024/003"},
	}
	resolved := scoring.ResolveMembers(decoded, func(plainID string) (*model.RiskReport, bool) {
		r, ok := stored[plainID]
		return r, ok
	})

	gt.A(t, resolved).Length(3)
	gt.B(t, resolved[0].Found).True()
	gt.S(t, resolved[0].Report.ID).Equal("r-1")
	gt.S(t, resolved[1].PlainID).Equal("FIN/2024/002")
	gt.S(t, resolved[1].Member).Equal("002")
	gt.B(t, resolved[1].Found).False()
	gt.V(t, resolved[1].Report).Nil()
	gt.B(t, resolved[2].Found).True()

	withoutLookup := scoring.ResolveMembers(decoded, nil)
	for _, m := range withoutLookup {
		gt.B(t, m.Found).False()
	}
}
