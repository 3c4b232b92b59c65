package opengl

// ── Lighting ──────────────────────────────────────────────────────────────────

// lightingVertSrc: the tunnel is viewed from inside, so inverse_normals flips
// the cube's outward normals.
const lightingVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 projection;
uniform mat4 view;
uniform mat4 model;
uniform bool inverse_normals;

out vec3 fragPos;
out vec3 fragNormal;
out vec2 fragUV;

void main() {
    fragPos = vec3(model * vec4(inPosition, 1.0));
    fragUV  = inUV;

    vec3 n = inverse_normals ? -inNormal : inNormal;
    mat3 normalMatrix = transpose(inverse(mat3(model)));
    fragNormal = normalize(normalMatrix * n);

    gl_Position = projection * view * vec4(fragPos, 1.0);
}
` + "\x00"

// lightingFragSrc writes scene radiance to attachment 0 and the bright-pass
// copy (luminance above threshold, else black) to attachment 1.
const lightingFragSrc = `
#version 410 core
layout(location = 0) out vec4 outColor;
layout(location = 1) out vec4 outBright;

in vec3 fragPos;
in vec3 fragNormal;
in vec2 fragUV;

struct Light {
    vec3 Position;
    vec3 Color;
};

uniform Light     lights[14];
uniform int       lightCount;
uniform sampler2D diffuseTexture;
uniform vec3      viewPos;
uniform float     threshold;

void main() {
    vec3 albedo = texture(diffuseTexture, fragUV).rgb;
    vec3 normal = normalize(fragNormal);

    vec3 lighting = vec3(0.0);
    for (int i = 0; i < lightCount; i++) {
        vec3  toLight = lights[i].Position - fragPos;
        float dist    = length(toLight);
        float diff    = max(dot(toLight / dist, normal), 0.0);
        lighting += lights[i].Color * diff * albedo / (dist * dist);
    }

    outColor = vec4(lighting, 1.0);
    float luma = dot(lighting, vec3(0.2126, 0.7152, 0.0722));
    outBright = luma > threshold ? vec4(lighting, 1.0) : vec4(0.0, 0.0, 0.0, 1.0);
}
` + "\x00"

// ── Skybox ────────────────────────────────────────────────────────────────────

// skyVertSrc forces depth = 1.0 via the xyww trick.
const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 projection;
uniform mat4 view;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = projection * view * vec4(inPosition, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

const skyFragSrc = `
#version 410 core
layout(location = 0) out vec4 outColor;
layout(location = 1) out vec4 outBright;

in vec3 fragDir;

uniform samplerCube skybox;
uniform float       threshold;

void main() {
    vec3 color = texture(skybox, fragDir).rgb;
    outColor = vec4(color, 1.0);
    float luma = dot(color, vec3(0.2126, 0.7152, 0.0722));
    outBright = luma > threshold ? vec4(color, 1.0) : vec4(0.0, 0.0, 0.0, 1.0);
}
` + "\x00"

// ── Post-processing ───────────────────────────────────────────────────────────

// ppVertSrc: fullscreen triangle via gl_VertexID (no VBO needed).
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// blurFragSrc is a single-axis 5-tap binomial blur with clamp-to-edge
// addressing. Source and destination have the same size, so texels are
// fetched directly.
const blurFragSrc = `
#version 410 core
out vec4 outColor;

uniform sampler2D image;
uniform bool      horizontal;

void main() {
    const float w[3] = float[](0.375, 0.25, 0.0625);
    ivec2 size = textureSize(image, 0);
    ivec2 p    = ivec2(gl_FragCoord.xy);
    ivec2 axis = horizontal ? ivec2(1, 0) : ivec2(0, 1);

    vec3 result = texelFetch(image, p, 0).rgb * w[0];
    for (int i = 1; i < 3; i++) {
        ivec2 a = clamp(p + axis * i, ivec2(0), size - 1);
        ivec2 b = clamp(p - axis * i, ivec2(0), size - 1);
        result += (texelFetch(image, a, 0).rgb + texelFetch(image, b, 0).rgb) * w[i];
    }
    outColor = vec4(result, 1.0);
}
` + "\x00"

// compositeFragSrc: bloom add, one of four operators, gamma 2.2.
// op: 0 none, 1 Reinhard, 2 exponential, 3 Drago.
const compositeFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;  // unit 0
uniform sampler2D bloomBlur;  // unit 1
uniform bool      bloom;
uniform int       op;
uniform float     exposure;
uniform float     maxLum;
uniform float     avgLum;

const float GAMMA      = 2.2;
const float DRAGO_BIAS = 0.85;

float luma(vec3 c) {
    return dot(c, vec3(0.2126, 0.7152, 0.0722));
}

vec3 drago(vec3 c) {
    float l = luma(c);
    if (l <= 0.0) {
        return vec3(0.0);
    }
    float lwa  = max(avgLum, 1e-4);
    float lw   = l * exposure / lwa;
    float lmax = maxLum * exposure / lwa;
    if (lmax <= 0.0) {
        return vec3(0.0);
    }
    lmax = max(lmax, lw);
    float biasP = log(DRAGO_BIAS) / log(0.5);
    float ld = (1.0 / log(1.0 + lmax) * log(10.0))
             * log(1.0 + lw) / log(2.0 + 8.0 * pow(lw / lmax, biasP));
    return clamp(c * (ld / l), 0.0, 1.0);
}

void main() {
    vec3 hdr = texture(hdrBuffer, fragUV).rgb;
    if (bloom) {
        hdr += texture(bloomBlur, fragUV).rgb;
    }

    vec3 mapped;
    if (op == 1) {
        vec3 x = max(hdr * exposure, 0.0);
        mapped = x / (x + 1.0);
    } else if (op == 2) {
        mapped = vec3(1.0) - exp(-hdr * exposure);
    } else if (op == 3) {
        mapped = drago(hdr);
    } else {
        mapped = clamp(hdr, 0.0, 1.0);
    }

    outColor = vec4(pow(max(mapped, 0.0), vec3(1.0 / GAMMA)), 1.0);
}
` + "\x00"
