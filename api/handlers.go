package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block/types"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/format"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
)

// Welcome is the body replied by the home route.
const Welcome = "Hello, this is the axelarscan explorer API!"

// Errors returned to client requests.
var (
	ErrBadMethod   = errors.New("bad method in request")
	ErrMissingNet  = errors.New("undefined blockchain - missing query: ?net=<blockchain>")
	ErrMissingAddr = errors.New("undefined address - missing query: ?address=<address>")
	ErrBadValue    = errors.New("invalid value")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("service not available")
)

// Response defines the data structure returned to the client making the http request. Body holds JSON encoded
// data except for plain messages.
type Response struct {
	Body  string `json:"body"`
	Error string `json:"error,omitempty"`
}

// status returns the http status code replied for err.
func status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, names.ErrUnknownProvider), errors.Is(err, types.ErrNoChain),
		errors.Is(err, store.ErrDataNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}

	return http.StatusBadRequest
}

// reply writes the response for a handler: err when not nil, otherwise body marshaled to JSON with code ok.
func reply(rw http.ResponseWriter, r *http.Request, body interface{}, err error, ok int) {
	var res Response

	code := ok

	if err != nil {
		res.Error = err.Error()
		code = status(err)
	} else if s, isStr := body.(string); isStr {
		res.Body = s
	} else {
		tmp, _ := json.Marshal(body)
		res.Body = string(tmp)
	}
	// log request
	log.WithFields(log.Fields{"remote": r.RemoteAddr, "uri": r.RequestURI, "code": code}).WithError(err).Debug("httpreq")
	// reply
	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(&res)
}

// flag reads a boolean query parameter, false when absent or invalid.
func flag(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.Form.Get(key))

	return b
}

// addresses reads the addresses queried, repeated or comma separated.
func addresses(r *http.Request) []string {
	var out []string

	for _, v := range r.Form["address"] {
		out = append(out, strings.Split(v, ",")...)
	}

	return names.Normalize(out)
}

// homeHandler just replies a welcome message to the client.
func (a *API) homeHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, Welcome, nil, http.StatusOK)
}

// chainsHandler replies every chain of the registry.
func (a *API) chainsHandler(rw http.ResponseWriter, r *http.Request) {
	if a.Chains == nil {
		reply(rw, r, nil, ErrUnavailable, 0)

		return
	}

	reply(rw, r, a.Chains.Registry().Chains(), nil, http.StatusOK)
}

// chainHandler replies the chain matching key. With ?exact=true only the id or chain id are compared.
func (a *API) chainHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var body interface{}

	defer func() { reply(rw, r, body, err, http.StatusOK) }()

	if a.Chains == nil {
		err = ErrUnavailable

		return
	}

	if err = r.ParseForm(); err != nil {
		return
	}

	key := mux.Vars(r)["key"]

	c, ok := a.Chains.Registry().GetChain(key, flag(r, "exact"))
	if !ok {
		err = fmt.Errorf("chain %q: %w", key, ErrNotFound)

		return
	}

	body = c
}

// assetHandler replies the asset matching key. ?chain= restricts the match to assets on that chain and replies the
// chain specific view of the asset.
func (a *API) assetHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var body interface{}

	defer func() { reply(rw, r, body, err, http.StatusOK) }()

	if a.Chains == nil {
		err = ErrUnavailable

		return
	}

	if err = r.ParseForm(); err != nil {
		return
	}

	key, chain := mux.Vars(r)["key"], r.Form.Get("chain")

	as, ok := a.Chains.Registry().GetAsset(key, chain, flag(r, "exact"))
	if !ok {
		err = fmt.Errorf("asset %q: %w", key, ErrNotFound)

		return
	}

	body = as

	if chain != "" {
		if v, found := as.OnChain(chain); found {
			body = v
		}
	}
}

// suggestHandler replies the chains and assets closest to key, at most ?n= (default 5).
func (a *API) suggestHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var body interface{}

	defer func() { reply(rw, r, body, err, http.StatusOK) }()

	if a.Chains == nil {
		err = ErrUnavailable

		return
	}

	if err = r.ParseForm(); err != nil {
		return
	}

	n := 5
	if s := r.Form.Get("n"); s != "" {
		if n, err = strconv.Atoi(s); err != nil || n <= 0 {
			err = fmt.Errorf("n %q: %w", s, ErrBadValue)

			return
		}
	}

	body = a.Chains.Registry().Suggest(mux.Vars(r)["key"], n)
}

// tokenHandler replies the ERC20 metadata of a token read from the blockchain given in ?net=.
func (a *API) tokenHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var tok types.Token

	defer func() { reply(rw, r, tok, err, http.StatusOK) }()

	if err = r.ParseForm(); err != nil {
		return
	}

	net := r.Form.Get("net")
	if net == "" {
		err = ErrMissingNet

		return
	}

	c, ok := a.BC[net]
	if !ok {
		err = types.ErrNoChain

		return
	}

	tok, err = c.GetToken(mux.Vars(r)["address"])
}

// namesHandler resolves the queried addresses with the provider and replies one record per address.
func (a *API) namesHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var recs map[string]names.Domain

	defer func() { reply(rw, r, recs, err, http.StatusOK) }()

	if a.Names == nil {
		err = ErrUnavailable

		return
	}

	if err = r.ParseForm(); err != nil {
		return
	}

	addrs := addresses(r)
	if len(addrs) == 0 {
		err = ErrMissingAddr

		return
	}

	recs, err = a.Names.Resolve(r.Context(), mux.Vars(r)["provider"], addrs)
}

// requestHandler sends a resolve request (POST) or a forget request (DELETE) for the address to the resolver service
// through the broker. A request accepted status will be replied or an error otherwise.
func (a *API) requestHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	v := mux.Vars(r)
	rq := msg.ResolveReq{Provider: v["provider"], Addrs: []string{names.Key(v["address"])}}

	defer func() { reply(rw, r, rq, err, http.StatusAccepted) }()

	switch r.Method {
	case http.MethodPost:
		rq.Act = msg.RESOLVE
	case http.MethodDelete:
		rq.Act = msg.FORGET
	default:
		err = ErrBadMethod

		return
	}

	if a.MB == nil || a.Names == nil {
		err = ErrUnavailable

		return
	}

	p, err := a.Names.Provider(rq.Provider)
	if err != nil {
		return
	}

	if rq.Act == msg.FORGET {
		if f, ok := p.(forgetter); ok {
			f.Forget(rq.Addrs[0])
		}
	}
	// send message to broker
	err = a.MB.SendRequest(rq.Provider, rq)
}

// recordsHandler replies the records stored by the resolver service for the provider. Without ?address= every record
// is replied.
func (a *API) recordsHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var recs []names.Domain

	defer func() { reply(rw, r, recs, err, http.StatusOK) }()

	if a.DB == nil {
		err = ErrUnavailable

		return
	}

	if err = r.ParseForm(); err != nil {
		return
	}

	recs, err = a.DB.GetRecords(r.Context(), mux.Vars(r)["provider"], addresses(r))
}

// identityHandler replies the keybase picture url of a validator identity.
func (a *API) identityHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var url string

	defer func() { reply(rw, r, map[string]string{"picture": url}, err, http.StatusOK) }()

	if a.Keybase == nil {
		err = ErrUnavailable

		return
	}

	id := mux.Vars(r)["id"]
	if url = a.Keybase.Picture(r.Context(), id); url == "" {
		err = fmt.Errorf("identity %q: %w", id, ErrNotFound)
	}
}

// identitiesHandler replies the pictures found for the identities in ?id= (repeated or comma separated).
func (a *API) identitiesHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var out map[string]string

	defer func() { reply(rw, r, out, err, http.StatusOK) }()

	if a.Keybase == nil {
		err = ErrUnavailable

		return
	}

	if err = r.ParseForm(); err != nil {
		return
	}

	var ids []string
	for _, v := range r.Form["id"] {
		ids = append(ids, strings.Split(v, ",")...)
	}

	ids = lo.Uniq(lo.Compact(lo.Map(ids, func(s string, _ int) string { return strings.TrimSpace(s) })))
	if len(ids) == 0 {
		err = ErrBadValue

		return
	}

	out = a.Keybase.Preload(r.Context(), ids)
}

// numberHandler formats ?value=. When ?units= is given, value is an integer amount of base units with that many
// decimals. ?decimals= sets the maximum decimals shown (default 2) and ?grouped=true uses comma grouping instead of
// unit suffixes.
func (a *API) numberHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var out string

	defer func() { reply(rw, r, map[string]string{"value": out}, err, http.StatusOK) }()

	if err = r.ParseForm(); err != nil {
		return
	}

	value := r.Form.Get("value")

	if s := r.Form.Get("units"); s != "" {
		units, errU := strconv.Atoi(s)
		if errU != nil || units < 0 {
			err = fmt.Errorf("units %q: %w", s, ErrBadValue)

			return
		}

		value = format.Units(value, units)
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		err = fmt.Errorf("value %q: %w", value, ErrBadValue)

		return
	}

	decimals := 2
	if s := r.Form.Get("decimals"); s != "" {
		if decimals, err = strconv.Atoi(s); err != nil || decimals < 0 {
			err = fmt.Errorf("decimals %q: %w", s, ErrBadValue)

			return
		}
	}

	if flag(r, "grouped") {
		out = format.Grouped(v, decimals)
	} else {
		out = format.Number(v, decimals)
	}
}

// timeHandler replies the relative time of ?ts= (unix seconds or milliseconds).
func (a *API) timeHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	body := map[string]string{}

	defer func() { reply(rw, r, body, err, http.StatusOK) }()

	if err = r.ParseForm(); err != nil {
		return
	}

	ts, err := strconv.ParseInt(r.Form.Get("ts"), 10, 64)
	if err != nil {
		err = fmt.Errorf("ts %q: %w", r.Form.Get("ts"), ErrBadValue)

		return
	}

	t := format.Unix(ts)
	body["ago"] = format.TimeAgo(t, time.Now())
	body["time"] = t.UTC().Format(time.RFC3339)
}
