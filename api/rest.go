package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/metrics"
)

const timeout = 15

// Router returns the RESTful API definition.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(countRequests)
	r.HandleFunc("/", a.homeHandler)
	r.HandleFunc("/chains", a.chainsHandler).Methods("GET")              // get all chains
	r.HandleFunc("/chains/{key}", a.chainHandler).Methods("GET")         // lookup a chain
	r.HandleFunc("/assets/{key}", a.assetHandler).Methods("GET")         // lookup an asset
	r.HandleFunc("/suggest/{key}", a.suggestHandler).Methods("GET")      // suggest chains and assets
	r.HandleFunc("/token/{address}", a.tokenHandler).Methods("GET")      // read token metadata
	r.HandleFunc("/names/{provider}", a.namesHandler).Methods("GET")     // resolve addresses
	r.HandleFunc("/names/{provider}/{address}", a.requestHandler)        // ask the resolver to resolve or forget
	r.HandleFunc("/records/{provider}", a.recordsHandler).Methods("GET") // get stored records
	r.HandleFunc("/identity/{id}", a.identityHandler).Methods("GET")     // get a keybase picture
	r.HandleFunc("/identities", a.identitiesHandler).Methods("GET")      // preload keybase pictures
	r.HandleFunc("/format/number", a.numberHandler).Methods("GET")       // format a number
	r.HandleFunc("/format/time", a.timeHandler).Methods("GET")           // format a timestamp

	return r
}

// Init sets up and starts the http/https server to service the RESTful API. If sslPort, sslCert and sslKey are
// informed, it will start an https (TLS) server on the specified endpoint. It returns once Stop is called.
func (a *API) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var err, errTLS error

	r := a.Router()

	// start http server
	if port != "" {
		a.s = &http.Server{
			Handler:      r,
			Addr:         endpoint + ":" + port,
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			err = a.s.ListenAndServe()
		}()

		log.Infof("Listening to API http requests on %s:%s", endpoint, port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		a.ss = &http.Server{
			Handler:      r,
			Addr:         endpoint + ":" + sslPort,
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			errTLS = a.ss.ListenAndServeTLS(sslCert, sslKey)
		}()

		log.Infof("Listening to API https requests on %s:%s", endpoint, sslPort)
	}
	// wait for servers to be shutdown
	<-a.sc

	return fmt.Sprintf("shutdown http server:%v, https server:%v", err, errTLS)
}

// statusRecorder keeps the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// countRequests counts every request by route template and status code.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: rw, code: http.StatusOK}
		next.ServeHTTP(sr, r)

		route := r.URL.Path
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		metrics.Requests.WithLabelValues(route, strconv.Itoa(sr.code)).Inc()
	})
}
