package kis_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stocker/internal/kis"
)

const priceFixture = `{
	"rt_cd": "0",
	"msg_cd": "MCA00000",
	"msg1": "정상처리 되었습니다.",
	"output": {
		"hts_kor_isnm": "삼성전자",
		"stck_prpr": "71000",
		"prdy_vrss": "-500",
		"prdy_ctrt": "-0.70",
		"acml_vol": "10234567",
		"lstn_stcn": "5969782550",
		"stck_oprc": "71500",
		"stck_hgpr": "72000",
		"stck_lwpr": "70800",
		"per": "14.53",
		"pbr": "1.35",
		"eps": "4886.00",
		"bps": "52559.00"
	}
}`

func TestCurrentPrice(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/uapi/domestic-stock/v1/quotations/inquire-price", req.URL.Path)
			require.Equal(t, "FHKST01010100", req.Header.Get("tr_id"))
			require.Equal(t, "005930", req.URL.Query().Get("FID_INPUT_ISCD"))
			return jsonResponse(http.StatusOK, priceFixture), nil
		}).
		Times(1)

	client := kis.NewClient("app-key", "app-secret", kis.WithHTTPClient(httpClient))

	// Act
	q, err := client.CurrentPrice(t.Context(), "token", "005930")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "005930", q.Symbol)
	require.Equal(t, "삼성전자", q.Name)
	require.Equal(t, "KR", q.Market)
	require.InEpsilon(t, 71000.0, q.Price, 0.0001)
	require.InEpsilon(t, -500.0, q.Change, 0.0001)
	require.InEpsilon(t, -0.70, q.ChangePercent, 0.0001)
	require.Equal(t, int64(10234567), q.Volume)
	require.Equal(t, int64(5969782550), q.MarketCap)
	require.NotNil(t, q.Open)
	require.InEpsilon(t, 71500.0, *q.Open, 0.0001)
	require.NotNil(t, q.PER)
	require.InEpsilon(t, 14.53, *q.PER, 0.0001)
}

func TestDecodeCurrentPrice_NameFallsBackToSymbol(t *testing.T) {
	t.Parallel()

	q, err := kis.DecodeCurrentPrice("123456", []byte(`{"rt_cd":"0","output":{"stck_prpr":"1000"}}`))
	require.NoError(t, err)
	require.Equal(t, "123456", q.Name)
	require.NotNil(t, q.EPS)
	require.Zero(t, *q.EPS)
}

func TestDecodeCurrentPrice_ErrShape(t *testing.T) {
	t.Parallel()

	_, err := kis.DecodeCurrentPrice("005930", []byte(`{"rt_cd":"0","output":[]}`))

	var decodeErr *kis.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}
