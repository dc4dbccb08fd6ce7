package fetch_test

import (
	"testing"
	"time"

	"github.com/named-data/ndnd-client/fetch"
	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/engine/basic"
	dummyface "github.com/named-data/ndnd-client/std/engine/face"
	"github.com/named-data/ndnd-client/std/ndn"
	spec "github.com/named-data/ndnd-client/std/ndn/spec_2022"
	"github.com/named-data/ndnd-client/std/object/congestion"
	sig "github.com/named-data/ndnd-client/std/security/signer"
	"github.com/named-data/ndnd-client/std/types/optional"
	tu "github.com/named-data/ndnd-client/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func alwaysValid(enc.Name, enc.Wire, ndn.Signature) bool { return true }

// answerOneRequest consumes the next outgoing Interest from df and replies
// with a Data segment for it. If the Interest's own name already carries a
// segment number (every request but the discovery probe), that name is
// reused verbatim; otherwise (the discovery probe) seg 0 is appended.
func answerOneRequest(t *testing.T, df *dummyface.DummyFace, content string, finalSeg uint64) {
	wire := tu.NoErr(df.Consume())
	interest, _, err := spec.Spec{}.ReadInterest(enc.NewBufferView(wire))
	require.NoError(t, err)

	name := interest.Name()
	if last := name[len(name)-1]; !last.IsSegment() {
		name = name.Append(enc.NewSegmentComponent(0))
	}

	data := tu.NoErr(spec.Spec{}.MakeData(name, &ndn.DataConfig{
		FinalBlockID: optional.Some(enc.NewSegmentComponent(finalSeg)),
	}, enc.Wire{[]byte(content)}, sig.NewSha256Signer()))
	require.NoError(t, df.FeedPacket(data.Wire.Join()))
}

func TestFetcherBlockModeReassemblesObject(t *testing.T) {
	tu.SetT(t)

	df := dummyface.NewDummyFace()
	eng := basic.NewEngine(df, basic.NewTimer())
	require.NoError(t, eng.Start())
	defer eng.Stop()

	name := tu.NoErr(enc.NameFromStr("/test/fetch"))

	opts := fetch.DefaultOptions()
	opts.UseConstantCwnd = true
	opts.Cwnd = congestion.AimdCongestionWindowOptions{InitCwnd: 2}

	done := make(chan struct{})
	var result []byte
	opts.OnComplete = func(data []byte) { result = data; close(done) }
	opts.OnError = func(code ndn.FetchErrorCode, msg string) { t.Fatalf("unexpected fetch error %d: %s", code, msg) }

	fetch.Start(eng, name, alwaysValid, opts)

	// Discovery probe, answered with segment 0 of a 3-segment object.
	answerOneRequest(t, df, "AAA", 2)
	// The window now has room for segments 1 and 2.
	answerOneRequest(t, df, "BBB", 2)
	answerOneRequest(t, df, "CCC", 2)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnComplete")
	}
	require.Equal(t, "AAABBBCCC", string(result))
}
