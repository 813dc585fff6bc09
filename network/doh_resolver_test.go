package network

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"net/netip"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dohResponder runs on resolver goroutines, so it reports problems via
// error responses instead of failing the test directly.
func dohResponder(t *testing.T) httpmock.Responder {
	t.Helper()

	return func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Accept") != "application/dns-message" {
			return httpmock.NewStringResponse(http.StatusNotAcceptable, "bad accept header"), nil
		}

		raw, err := base64.RawURLEncoding.DecodeString(req.URL.Query().Get("dns"))
		if err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}

		var query dns.Msg
		if err := query.Unpack(raw); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}

		msg := new(dns.Msg)
		msg.SetReply(&query)

		question := query.Question[0]

		switch question.Qtype {
		case dns.TypeA:
			msg.Answer = append(msg.Answer, &dns.A{
				Hdr: dns.RR_Header{
					Name:   question.Name,
					Rrtype: dns.TypeA,
					Class:  dns.ClassINET,
					Ttl:    60,
				},
				A: net.ParseIP("192.0.2.20"),
			})
		case dns.TypeAAAA:
			msg.Answer = append(msg.Answer, &dns.AAAA{
				Hdr: dns.RR_Header{
					Name:   question.Name,
					Rrtype: dns.TypeAAAA,
					Class:  dns.ClassINET,
					Ttl:    60,
				},
				AAAA: net.ParseIP("2001:db8::20"),
			})
		}

		packed, err := msg.Pack()
		if err != nil {
			return httpmock.NewStringResponse(http.StatusInternalServerError, err.Error()), nil
		}

		return httpmock.NewBytesResponse(http.StatusOK, packed), nil
	}
}

func TestDOHResolver_RequiresIPHostname(t *testing.T) {
	_, err := NewDOHResolver("dns.example.com", nil, false)

	assert.Error(t, err)
}

func TestDOHResolver_Resolve(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)

	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://9\.9\.9\.9/dns-query`, dohResponder(t))

	resolver, err := NewDOHResolver("9.9.9.9", client, false)
	require.NoError(t, err)

	defer resolver.Stop()

	addrs, err := resolver.Resolve(context.Background(), "example.com", 443)

	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, netip.MustParseAddrPort("192.0.2.20:443"), addrs[0])
	assert.Equal(t, netip.MustParseAddrPort("[2001:db8::20]:443"), addrs[1])
}

func TestDOHResolver_IPv6ServerIsBracketed(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)

	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://\[2620:fe::fe\]/dns-query`, dohResponder(t))

	resolver, err := NewDOHResolver("2620:fe::fe", client, false)
	require.NoError(t, err)

	defer resolver.Stop()

	addrs, err := resolver.Resolve(context.Background(), "example.com", 443)

	require.NoError(t, err)
	assert.Len(t, addrs, 2)
}

func TestDOHResolver_ServerFailure(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)

	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://9\.9\.9\.9/dns-query`,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	resolver, err := NewDOHResolver("9.9.9.9", client, false)
	require.NoError(t, err)

	defer resolver.Stop()

	_, err = resolver.Resolve(context.Background(), "example.com", 443)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestDOHResolver_AnswersAreCached(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)

	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://9\.9\.9\.9/dns-query`, dohResponder(t))

	resolver, err := NewDOHResolver("9.9.9.9", client, false)
	require.NoError(t, err)

	defer resolver.Stop()

	_, err = resolver.Resolve(context.Background(), "example.com", 443)
	require.NoError(t, err)

	callsAfterFirst := httpmock.GetTotalCallCount()

	_, err = resolver.Resolve(context.Background(), "example.com", 8388)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, httpmock.GetTotalCallCount())
}
