// 包 utils：自签名证书生成，仅用于本地或内网部署的 TLS 兜底
package utils

import (
    "crypto/ecdsa"
    "crypto/elliptic"
    "crypto/rand"
    "crypto/x509"
    "crypto/x509/pkix"
    "encoding/pem"
    "fmt"
    "math/big"
    "net"
    "os"
    "path/filepath"
    "time"
)

// EnsureSelfSignedCert：证书与私钥均存在时直接返回；否则生成一年期 ECDSA P-256 自签名证书
// 约束：私钥文件权限 0600；CN 同时写入 DNSNames
func EnsureSelfSignedCert(certPath, keyPath, cn string) error {
    if fileExists(certPath) && fileExists(keyPath) {
        return nil
    }
    for _, dir := range []string{filepath.Dir(certPath), filepath.Dir(keyPath)} {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("mkdir %s: %w", dir, err)
        }
    }
    priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
    if err != nil { return err }
    serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
    serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
    if err != nil { return err }
    tmpl := x509.Certificate{
        SerialNumber: serialNumber,
        Subject: pkix.Name{CommonName: cn},
        NotBefore: time.Now().Add(-time.Hour),
        NotAfter:  time.Now().Add(365 * 24 * time.Hour),
        KeyUsage:  x509.KeyUsageDigitalSignature,
        ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
        BasicConstraintsValid: true,
    }
    tmpl.DNSNames = []string{"localhost", cn}
    tmpl.IPAddresses = []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")}
    derBytes, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
    if err != nil { return err }
    keyDER, err := x509.MarshalECPrivateKey(priv)
    if err != nil { return err }
    if err := writePEM(certPath, 0o644, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes}); err != nil { return err }
    return writePEM(keyPath, 0o600, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
}

func writePEM(path string, mode os.FileMode, b *pem.Block) error {
    f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
    if err != nil { return err }
    if err := pem.Encode(f, b); err != nil {
        _ = f.Close()
        return fmt.Errorf("write %s: %w", path, err)
    }
    return f.Close()
}

func fileExists(p string) bool {
    st, err := os.Stat(p)
    return err == nil && !st.IsDir()
}

