package usecase

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/domain"
	"github.com/x-xyz/catalog/domain/catalog"
)

const ipfsPrefix = "ipfs://"

type WebResourceUseCaseCfg struct {
	HttpReader domain.WebResourceReaderRepository
	// IpfsReaders are tried in order until one returns the content
	IpfsReaders []domain.WebResourceReaderRepository
}

type webResourceUseCase struct {
	httpReader  domain.WebResourceReaderRepository
	ipfsReaders []domain.WebResourceReaderRepository
}

func NewWebResourceUseCase(cfg *WebResourceUseCaseCfg) domain.WebResourceUseCase {
	return &webResourceUseCase{
		httpReader:  cfg.HttpReader,
		ipfsReaders: cfg.IpfsReaders,
	}
}

func (u *webResourceUseCase) Get(c bCtx.Ctx, rawUrl string) ([]byte, error) {
	return u.get(c, rawUrl)
}

// GetJson returns the resource only when it is a json object
func (u *webResourceUseCase) GetJson(c bCtx.Ctx, rawUrl string) ([]byte, error) {
	data, err := u.get(c, rawUrl)
	if err != nil {
		return nil, err
	}
	if !isJsonObject(data) {
		c.WithFields(log.Fields{
			"url":      rawUrl,
			"mimetype": mimetype.Detect(data).String(),
			"size":     len(data),
		}).Error("invalid json")
		return nil, domain.ErrInvalidJsonFormat
	}
	return data, nil
}

func (u *webResourceUseCase) get(c bCtx.Ctx, rawUrl string) ([]byte, error) {
	pUrl, err := url.Parse(rawUrl)
	if err != nil {
		c.WithFields(log.Fields{
			"url": rawUrl,
			"err": err,
		}).Error("failed to parse url")
		return nil, err
	}

	var data []byte
	switch pUrl.Scheme {
	case "http", "https":
		data, err = u.httpReader.Get(c, rawUrl)
	case "ipfs":
		cid := strings.TrimPrefix(rawUrl, ipfsPrefix)
		cid = strings.TrimPrefix(cid, "ipfs/") // early foundation's metadata bug
		data, err = u.getIpfs(c, cid)
	default:
		return nil, domain.ErrUnsupportedSchema
	}
	if err == nil {
		return data, nil
	}

	if pUrl.Scheme == "https" {
		if ipfsUrl := getIpfsUrl(rawUrl); len(ipfsUrl) > 0 {
			c.WithFields(log.Fields{
				"url":     rawUrl,
				"ipfsUrl": ipfsUrl,
			}).Info("falling back to ipfs")
			return u.get(c, ipfsUrl)
		}
	}

	c.WithFields(log.Fields{
		"schema": pUrl.Scheme,
		"url":    rawUrl,
		"err":    err,
	}).Error("failed to fetch")
	return nil, err
}

func (u *webResourceUseCase) getIpfs(c bCtx.Ctx, cid string) ([]byte, error) {
	err := domain.ErrUnsupportedSchema
	for i, r := range u.ipfsReaders {
		var data []byte
		data, err = r.Get(c, cid)
		if err == nil {
			return data, nil
		}
		c.WithFields(log.Fields{
			"cid":    cid,
			"reader": i,
			"err":    err,
		}).Warn("ipfs reader failed")
	}
	return nil, err
}

// getIpfsUrl rewrites a known gateway url to its ipfs:// form, empty when the host is not a gateway
func getIpfsUrl(rawUrl string) string {
	if strings.HasPrefix(rawUrl, ipfsPrefix) {
		return ""
	}
	hash, err := catalog.ContentHash(rawUrl)
	if err != nil {
		return ""
	}
	return ipfsPrefix + hash
}

func isJsonObject(data []byte) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(data, &obj) == nil && obj != nil
}
