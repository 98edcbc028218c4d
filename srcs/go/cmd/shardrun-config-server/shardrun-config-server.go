package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/shardrun/shardrun/srcs/go/configserver"
	"github.com/shardrun/shardrun/srcs/go/log"
	"github.com/shardrun/shardrun/srcs/go/utils"
)

var (
	host     = flag.String("host", "0.0.0.0", "")
	port     = flag.Int("port", 9100, "")
	initFile = flag.String("init", "", "initial config as JSON")
	ttl      = flag.Duration("ttl", 0, "time to live")
)

func main() {
	t0 := time.Now()
	flag.Parse()
	listenURL := url.URL{
		Scheme: `http`,
		Host:   net.JoinHostPort(*host, strconv.Itoa(*port)),
		Path:   configserver.Endpoint,
	}
	log.Infof("listening %s", listenURL.String())
	var initConfig *configserver.Config
	if len(*initFile) > 0 {
		f, err := os.Open(*initFile)
		if err != nil {
			utils.ExitErr(err)
		}
		defer f.Close()
		if err := utils.ReadJSON(f, &initConfig); err != nil {
			utils.ExitErr(err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	if *ttl > 0 {
		ctx, cancel = context.WithTimeout(ctx, *ttl)
		defer cancel()
	}
	srv := &http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(*port)),
		Handler: logRequest(configserver.New(cancel, initConfig)),
	}
	srv.SetKeepAlivesEnabled(false)
	defer srv.Close()
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			utils.ExitErr(err)
		}
	}()
	<-ctx.Done()
	log.Infof("%s stopped after %s", utils.ProgName(), time.Since(t0))
}

func logRequest(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Debugf("%s %s from %s, UA: %s", req.Method, req.URL.Path, req.RemoteAddr, req.UserAgent())
		h.ServeHTTP(w, req)
	})
}
