package divemeets

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"time"

	"divescore-backend/lib/htmlutil"
	"divescore-backend/lib/telemetry"
	"divescore-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://secure.meetcontrol.com/divemeets/system"

type Client struct {
	Http *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to 30s
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("User-Agent", "Mozilla/5.0")
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Encoding", "gzip, deflate")
	client.SetHeader("Connection", "keep-alive")
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "scrapers/divemeets/http")

	return &Client{Http: client}, nil
}

// FetchProfile returns the raw markup of a diver's profile page.
func (c *Client) FetchProfile(ctx context.Context, number string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchProfile")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("number", number).
		Get("/profile.php")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch profile page")
		return "", err
	}
	return res.String(), nil
}

// FetchDiveHistory returns the raw markup of the performance history
// table for one (dive, height) pair of a given diver.
func (c *Client) FetchDiveHistory(ctx context.Context, number, dive, height string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchDiveHistory")
	defer span.End()

	// the site has no 7.5 height category of its own, it serves
	// those records under height=7
	apiHeight := height
	if height == "7.5" {
		apiHeight = "7"
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"dvrnum": number,
			"dive":   dive,
			"height": apiHeight,
		}).
		Get("/diversdives.php")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch dive history page")
		return "", err
	}
	return res.String(), nil
}

type Member struct {
	Number string
	Name   string
}

var profileLinkRegex = regexp.MustCompile(`number=(\d+)`)

// SearchMembers submits the member search form and returns every
// candidate whose result row links back to a profile page.
func (c *Client) SearchMembers(ctx context.Context, first, last string) ([]Member, error) {
	ctx, span := tracer.Start(ctx, "client:SearchMembers")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"first": first,
			"last":  last,
		}).
		Post("/memberlist.php")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit member search")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse member search results")
		return nil, err
	}

	var members []Member
	doc.Find(`a[href*="profile.php"]`).Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		groups := profileLinkRegex.FindStringSubmatch(href)
		if len(groups) < 2 {
			return
		}
		name := htmlutil.GetTrimmedText(a.Nodes[0])
		members = append(members, Member{
			Number: groups[1],
			Name:   name,
		})
	})

	return members, nil
}

// BestMatch picks the candidate whose display name is most similar
// to the searched-for name. Returns an error when there are no
// candidates at all.
func BestMatch(members []Member, first, last string) (Member, error) {
	if len(members) == 0 {
		return Member{}, fmt.Errorf("no members matched '%s %s'", first, last)
	}

	target := textutil.NormalizeName(first + " " + last)
	best := members[0]
	var bestSimilarity float64
	for _, m := range members {
		similarity := matchr.JaroWinkler(textutil.NormalizeName(m.Name), target, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = m
		}
	}
	return best, nil
}
