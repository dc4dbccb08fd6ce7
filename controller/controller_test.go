package controller_test

import (
	"testing"
	"time"

	"github.com/named-data/ndnd-client/controller"
	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/engine/basic"
	dummyface "github.com/named-data/ndnd-client/std/engine/face"
	"github.com/named-data/ndnd-client/std/ndn"
	mgmt "github.com/named-data/ndnd-client/std/ndn/mgmt_2022"
	spec "github.com/named-data/ndnd-client/std/ndn/spec_2022"
	sig "github.com/named-data/ndnd-client/std/security/signer"
	tu "github.com/named-data/ndnd-client/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

// encodeControlResponse hand-builds the ControlResponse TLV a command Data
// carries as Content, since nothing in this repo needs to encode one
// outside of tests.
func encodeControlResponse(statusCode uint64, statusText string) []byte {
	text := []byte(statusText)
	buf := []byte{0x66, 0x01, byte(statusCode)}
	buf = append(buf, 0x67, byte(len(text)))
	buf = append(buf, text...)
	out := []byte{0x65, byte(len(buf))}
	return append(out, buf...)
}

func newTestController(t *testing.T) (*controller.Controller, *dummyface.DummyFace, *basic.Engine) {
	df := dummyface.NewDummyFace()
	eng := basic.NewEngine(df, basic.NewTimer())
	require.NoError(t, eng.Start())
	c := controller.New(eng, true, sig.NewSha256Signer())
	return c, df, eng
}

func respondWithControlResponse(t *testing.T, df *dummyface.DummyFace, statusCode uint64, statusText string) {
	sentWire := tu.NoErr(df.Consume())
	interest, _, err := spec.Spec{}.ReadInterest(enc.NewBufferView(sentWire))
	require.NoError(t, err)

	content := encodeControlResponse(statusCode, statusText)
	data := tu.NoErr(spec.Spec{}.MakeData(interest.Name(), &ndn.DataConfig{}, enc.Wire{content}, sig.NewSha256Signer()))
	require.NoError(t, df.FeedPacket(data.Wire.Join()))
}

func TestControllerStartSuccess(t *testing.T) {
	tu.SetT(t)

	c, df, eng := newTestController(t)
	defer eng.Stop()

	prefix := tu.NoErr(enc.NameFromStr("/test/prefix"))
	done := make(chan struct{})

	var gotParams *mgmt.ControlArgs
	err := c.Start("rib", "register", &mgmt.ControlArgs{Name: prefix},
		func(args *mgmt.ControlArgs) { gotParams = args; close(done) },
		func(code uint64, reason string) { t.Fatalf("unexpected failure: %d %s", code, reason) },
	)
	require.NoError(t, err)

	respondWithControlResponse(t, df, 200, "OK")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for success callback")
	}
	require.NotNil(t, gotParams)
}

func TestControllerStartServerError(t *testing.T) {
	tu.SetT(t)

	c, df, eng := newTestController(t)
	defer eng.Stop()

	prefix := tu.NoErr(enc.NameFromStr("/test/prefix"))
	done := make(chan struct{})

	var gotCode uint64
	var gotReason string
	err := c.Start("rib", "register", &mgmt.ControlArgs{Name: prefix},
		func(*mgmt.ControlArgs) { t.Fatal("unexpected success") },
		func(code uint64, reason string) { gotCode, gotReason = code, reason; close(done) },
	)
	require.NoError(t, err)

	respondWithControlResponse(t, df, 403, "Forbidden")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for failure callback")
	}
	require.Equal(t, uint64(403), gotCode)
	require.Equal(t, "Forbidden", gotReason)
}

func TestControllerStartValidationFailure(t *testing.T) {
	tu.SetT(t)

	c, df, eng := newTestController(t)
	defer eng.Stop()
	c.SetValidator(func(enc.Name, enc.Wire, ndn.Signature) bool { return false })

	prefix := tu.NoErr(enc.NameFromStr("/test/prefix"))
	done := make(chan struct{})

	var gotCode uint64
	err := c.Start("rib", "register", &mgmt.ControlArgs{Name: prefix},
		func(*mgmt.ControlArgs) { t.Fatal("unexpected success") },
		func(code uint64, reason string) { gotCode = code; close(done) },
	)
	require.NoError(t, err)

	respondWithControlResponse(t, df, 200, "OK")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for failure callback")
	}
	require.Equal(t, controller.ErrorValidation, gotCode)
}
